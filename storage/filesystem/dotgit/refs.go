package dotgit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/vcscore/corevcs/plumbing"
)

// refPath returns the loose-ref file path for n, cleaned with
// filepath.Clean. It does not reject a name containing ".." components;
// callers validate names with plumbing.ValidateName first.
func refPath(n plumbing.ReferenceName) string {
	return filepath.Clean(string(n))
}

// ReadRef reads name as a loose ref, or falls back to the packed-refs
// table (spec.md §4.3 "loose shadows packed").
func (d *DotGit) ReadRef(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	if r, err := d.readLooseRef(name); err == nil {
		return r, nil
	} else if err != plumbing.ErrNotFound {
		return nil, err
	}

	packed, _, err := d.readPackedRefs()
	if err != nil {
		return nil, err
	}
	if r, ok := packed[name]; ok {
		return r, nil
	}
	return nil, plumbing.ErrNotFound
}

func (d *DotGit) readLooseRef(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	f, err := d.fs.Open(refPath(name))
	if os.IsNotExist(err) {
		return nil, plumbing.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line, err := readFirstLine(f)
	if err != nil {
		return nil, err
	}
	return plumbing.NewReferenceFromStrings(string(name), line), nil
}

func readFirstLine(f billy.File) (string, error) {
	br := bufio.NewReader(f)
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WriteRef writes a loose ref file directly (no locking); callers that
// need the optimistic-concurrency check or atomic multi-ref semantics
// go through the refupdate package instead, which builds on LockRef.
func (d *DotGit) WriteRef(r *plumbing.Reference) error {
	if err := d.fs.MkdirAll(filepath.Dir(refPath(r.Name())), 0755); err != nil {
		return err
	}
	content := r.Strings()[1] + "\n"
	f, err := d.fs.Create(refPath(r.Name()))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(content))
	return err
}

// RemoveRef removes a loose ref file; absence is not an error.
func (d *DotGit) RemoveRef(name plumbing.ReferenceName) error {
	err := d.fs.Remove(refPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Refs lists every loose ref under refs/ and HEAD, then overlays (does
// not duplicate) whatever packed-refs adds.
func (d *DotGit) Refs() ([]*plumbing.Reference, error) {
	seen := make(map[plumbing.ReferenceName]bool)
	var refs []*plumbing.Reference

	var walk func(dir string) error
	walk = func(dir string) error {
		fis, err := d.fs.ReadDir(dir)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, fi := range fis {
			p := filepath.Join(dir, fi.Name())
			if fi.IsDir() {
				if err := walk(p); err != nil {
					return err
				}
				continue
			}
			name := plumbing.ReferenceName(filepath.ToSlash(p))
			r, err := d.readLooseRef(name)
			if err != nil {
				continue
			}
			seen[name] = true
			refs = append(refs, r)
		}
		return nil
	}
	if err := walk(refsPath); err != nil {
		return nil, err
	}
	if head, err := d.readLooseRef(plumbing.HEAD); err == nil {
		seen[plumbing.HEAD] = true
		refs = append(refs, head)
	}

	packed, order, err := d.readPackedRefs()
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		if seen[name] {
			continue
		}
		refs = append(refs, packed[name])
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name() < refs[j].Name() })
	return refs, nil
}

// CountLooseRefs reports how many loose ref files exist (HEAD excluded,
// matching git's own count used to decide when packing is worthwhile).
func (d *DotGit) CountLooseRefs() (int, error) {
	count := 0
	var walk func(dir string) error
	walk = func(dir string) error {
		fis, err := d.fs.ReadDir(dir)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, fi := range fis {
			if fi.IsDir() {
				if err := walk(filepath.Join(dir, fi.Name())); err != nil {
					return err
				}
				continue
			}
			count++
		}
		return nil
	}
	return count, walk(refsPath)
}

// readPackedRefs parses the packed-refs file, returning both a lookup
// map and the order in which the file lists the refs (Refs sorts its
// merged loose-and-packed result itself).
func (d *DotGit) readPackedRefs() (map[plumbing.ReferenceName]*plumbing.Reference, []plumbing.ReferenceName, error) {
	f, err := d.fs.Open(packedRefsPath)
	if os.IsNotExist(err) {
		return map[plumbing.ReferenceName]*plumbing.Reference{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	refs := make(map[plumbing.ReferenceName]*plumbing.Reference)
	var order []plumbing.ReferenceName
	var last *plumbing.Reference

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '^' {
			// Peeled identity of the tag just emitted; not surfaced by
			// this layer (object.Peel already resolves tag chains
			// on demand), but consumed here so it isn't mistaken for a
			// ref line.
			_ = last
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		hex, name := line[:sp], line[sp+1:]
		r := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(hex))
		refs[r.Name()] = r
		order = append(order, r.Name())
		last = r
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return refs, order, nil
}

// PackRefs consolidates every loose, non-symbolic ref into packed-refs
// in sorted order, then removes the loose copies (spec.md §4.3 "Ref
// pack consolidation"). A loose ref whose value changed since it was
// read is left in place rather than deleted, a conservative concurrency
// check matching the spec's description. No "^<peeled>" lines are
// written for tags, so the header declares only the sorted trait.
func (d *DotGit) PackRefs() error {
	loose, err := d.Refs()
	if err != nil {
		return err
	}

	packed, _, err := d.readPackedRefs()
	if err != nil {
		return err
	}

	var toPack []*plumbing.Reference
	for _, r := range loose {
		if r.Type() != plumbing.HashReference || r.Name() == plumbing.HEAD {
			continue
		}
		toPack = append(toPack, r)
		packed[r.Name()] = r
	}
	if len(toPack) == 0 {
		return nil
	}

	var names []plumbing.ReferenceName
	for n := range packed {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	tmp, err := d.fs.TempFile("", "packed-refs")
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(tmp)
	bw.WriteString("# pack-refs with: sorted\n")
	for _, n := range names {
		fmt.Fprintf(bw, "%s %s\n", packed[n].Hash().String(), n)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := d.fs.Rename(tmp.Name(), packedRefsPath); err != nil {
		return err
	}

	for _, r := range toPack {
		cur, err := d.readLooseRef(r.Name())
		if err != nil {
			continue
		}
		if cur.Hash() != r.Hash() {
			continue
		}
		_ = d.RemoveRef(r.Name())
	}
	return nil
}

// --- reflog ---

// ReflogEntry is one line of a ref's reflog.
type ReflogEntry struct {
	Old, New plumbing.ID
	Name     string
	Email    string
	Time     time.Time
	Message  string
}

func (d *DotGit) reflogPath(name plumbing.ReferenceName) string {
	return filepath.Join(logsPath, filepath.Clean(string(name)))
}

// AppendReflog appends one entry to name's reflog, creating the file
// and its parent directories if needed.
func (d *DotGit) AppendReflog(name plumbing.ReferenceName, e ReflogEntry) error {
	path := d.reflogPath(name)
	if err := d.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := d.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %s <%s> %d +0000\t%s\n",
		e.Old.String(), e.New.String(), e.Name, e.Email, e.Time.Unix(), e.Message)
	_, err = f.Write([]byte(line))
	return err
}

// WriteReflog overwrites name's reflog with entries, in the order
// given. Used by reflog-expiry pruning to rewrite the file once with
// only the entries still inside the retention window, rather than
// removing lines in place.
func (d *DotGit) WriteReflog(name plumbing.ReferenceName, entries []ReflogEntry) error {
	path := d.reflogPath(name)
	if err := d.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := d.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, e := range entries {
		line := fmt.Sprintf("%s %s %s <%s> %d +0000\t%s\n",
			e.Old.String(), e.New.String(), e.Name, e.Email, e.Time.Unix(), e.Message)
		if _, err := f.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

// ReadReflog reads every entry of name's reflog in file order (oldest
// first).
func (d *DotGit) ReadReflog(name plumbing.ReferenceName) ([]ReflogEntry, error) {
	f, err := d.fs.Open(d.reflogPath(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []ReflogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		e, err := parseReflogLine(sc.Text())
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

func parseReflogLine(line string) (ReflogEntry, error) {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return ReflogEntry{}, fmt.Errorf("dotgit: malformed reflog line")
	}
	header, message := line[:tab], line[tab+1:]

	fields := strings.SplitN(header, " ", 3)
	if len(fields) < 3 {
		return ReflogEntry{}, fmt.Errorf("dotgit: malformed reflog header")
	}

	ident := fields[2]
	lt := strings.IndexByte(ident, '<')
	gt := strings.IndexByte(ident, '>')
	if lt < 0 || gt < 0 {
		return ReflogEntry{}, fmt.Errorf("dotgit: malformed reflog identity")
	}
	name := strings.TrimSpace(ident[:lt])
	rest := strings.TrimSpace(ident[gt+1:])
	var unix int64
	fmt.Sscanf(rest, "%d", &unix)

	return ReflogEntry{
		Old:     plumbing.NewHash(fields[0]),
		New:     plumbing.NewHash(fields[1]),
		Name:    name,
		Email:   ident[lt+1 : gt],
		Time:    time.Unix(unix, 0).UTC(),
		Message: message,
	}, nil
}
