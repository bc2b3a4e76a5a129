package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Commit is (tree, parents, author, committer, optional headers,
// message) — spec.md §3. A commit with zero parents is a root commit.
type Commit struct {
	Hash         plumbing.ID
	Author       Signature
	Committer    Signature
	TreeHash     plumbing.ID
	ParentHashes []plumbing.ID
	Message      string

	// Encoding names the message's text encoding if the commit carries
	// an explicit "encoding" header (defaults to UTF-8 when absent).
	Encoding string
	// PGPSignature holds the raw "gpgsig" header block, if present.
	PGPSignature string
	// ExtraHeaders preserves any other header lines verbatim, in order,
	// so a commit can be re-encoded byte-identically even if it carries
	// headers this implementation doesn't interpret (mergetag, etc).
	ExtraHeaders []string

	s storer.EncodedObjectStorer
}

// NumParents reports the number of parent commits.
func (c *Commit) NumParents() int { return len(c.ParentHashes) }

// IsRootCommit reports whether c has no parents.
func (c *Commit) IsRootCommit() bool { return len(c.ParentHashes) == 0 }

// Tree resolves and decodes c's tree.
func (c *Commit) Tree() (*Tree, error) {
	return GetTree(c.s, c.TreeHash)
}

// Parents returns an iterator over c's parent commits, in the order
// recorded on the commit (first parent first).
func (c *Commit) Parents() CommitIter {
	return &parentIter{s: c.s, hashes: c.ParentHashes}
}

// Parent resolves the i'th parent directly.
func (c *Commit) Parent(i int) (*Commit, error) {
	if i < 0 || i >= len(c.ParentHashes) {
		return nil, ErrParentNotFound
	}
	return GetCommit(c.s, c.ParentHashes[i])
}

// Decode parses o's content into c.
func (c *Commit) Decode(s storer.EncodedObjectStorer, o plumbing.EncodedObject) error {
	if o.Type() != plumbing.CommitObject {
		return ErrUnsupportedObject
	}

	c.Hash = o.ID()
	c.s = s
	c.ParentHashes = nil
	c.ExtraHeaders = nil

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	var inMessage bool
	var message bytes.Buffer
	var inPGP bool
	var pgp bytes.Buffer

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return plumbing.NewCorrupt("commit", "read header", err)
		}
		eof := err == io.EOF

		if inMessage {
			message.Write(line)
			if eof {
				break
			}
			continue
		}

		trimmed := bytes.TrimRight(line, "\n")

		if inPGP {
			pgp.Write(trimmed)
			pgp.WriteByte('\n')
			if bytes.HasPrefix(trimmed, []byte(" -----END")) || bytes.Equal(bytes.TrimSpace(trimmed), []byte("-----END PGP SIGNATURE-----")) {
				inPGP = false
				c.PGPSignature = strings.TrimPrefix(pgp.String(), " ")
			}
			if eof {
				break
			}
			continue
		}

		if len(trimmed) == 0 {
			inMessage = true
			if eof {
				break
			}
			continue
		}

		split := bytes.SplitN(trimmed, []byte{' '}, 2)
		key := string(split[0])
		var val []byte
		if len(split) > 1 {
			val = split[1]
		}

		switch key {
		case "tree":
			c.TreeHash, err = parseIDField(val)
			if err != nil {
				return err
			}
		case "parent":
			id, err := parseIDField(val)
			if err != nil {
				return err
			}
			c.ParentHashes = append(c.ParentHashes, id)
		case "author":
			c.Author.Decode(val)
		case "committer":
			c.Committer.Decode(val)
		case "encoding":
			c.Encoding = string(val)
		case "gpgsig":
			inPGP = true
			pgp.Reset()
			pgp.Write(val)
			pgp.WriteByte('\n')
		default:
			c.ExtraHeaders = append(c.ExtraHeaders, string(trimmed))
		}

		if eof {
			break
		}
	}

	c.Message = message.String()
	return nil
}

func parseIDField(b []byte) (plumbing.ID, error) {
	id, err := plumbing.IDFromHex(string(bytes.TrimSpace(b)))
	if err != nil {
		return plumbing.ZeroID, plumbing.NewCorrupt("commit", "bad object id in header", err)
	}
	return id, nil
}

// Encode writes c's canonical byte encoding to w.
func (c *Commit) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "tree %s\n", c.TreeHash)
	for _, p := range c.ParentHashes {
		fmt.Fprintf(bw, "parent %s\n", p)
	}
	fmt.Fprint(bw, "author ")
	c.Author.Encode(bw)
	bw.WriteByte('\n')
	fmt.Fprint(bw, "committer ")
	c.Committer.Encode(bw)
	bw.WriteByte('\n')
	if c.Encoding != "" {
		fmt.Fprintf(bw, "encoding %s\n", c.Encoding)
	}
	for _, h := range c.ExtraHeaders {
		fmt.Fprintf(bw, "%s\n", h)
	}
	if c.PGPSignature != "" {
		fmt.Fprint(bw, "gpgsig ")
		lines := strings.Split(strings.TrimSuffix(c.PGPSignature, "\n"), "\n")
		for i, l := range lines {
			if i > 0 {
				bw.WriteString(" ")
			}
			bw.WriteString(l)
			bw.WriteByte('\n')
		}
	}
	bw.WriteByte('\n')
	bw.WriteString(c.Message)
	return bw.Flush()
}

// WriteCommit canonicalizes and stores c as a new commit object.
func WriteCommit(s storer.EncodedObjectStorer, c *Commit) (plumbing.ID, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.CommitObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroID, err
	}
	if err := c.Encode(w); err != nil {
		w.Close()
		return plumbing.ZeroID, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroID, err
	}
	return s.SetEncodedObject(obj)
}

// GetCommit reads and decodes the commit named by id, following one tag
// dereference if id names a tag pointing at a commit.
func GetCommit(s storer.EncodedObjectStorer, id plumbing.ID) (*Commit, error) {
	o, err := s.EncodedObject(storer.AnyObject, id)
	if err != nil {
		return nil, err
	}
	if o.Type() == plumbing.TagObject {
		t := &Tag{}
		if err := t.Decode(s, o); err != nil {
			return nil, err
		}
		return GetCommit(s, t.Target)
	}
	c := &Commit{}
	return c, c.Decode(s, o)
}

// ErrParentNotFound is returned by Commit.Parent for an out-of-range
// index.
var ErrParentNotFound = fmt.Errorf("object: parent index out of range")

// CommitIter iterates over a sequence of commits.
type CommitIter interface {
	Next() (*Commit, error)
	ForEach(func(*Commit) error) error
	Close()
}

type parentIter struct {
	s      storer.EncodedObjectStorer
	hashes []plumbing.ID
	pos    int
}

func (i *parentIter) Next() (*Commit, error) {
	if i.pos >= len(i.hashes) {
		return nil, io.EOF
	}
	h := i.hashes[i.pos]
	i.pos++
	return GetCommit(i.s, h)
}

func (i *parentIter) ForEach(cb func(*Commit) error) error {
	for {
		c, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(c); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *parentIter) Close() { i.pos = len(i.hashes) }

// commitSliceIter adapts a plain slice to CommitIter, used by the
// revision walker to hand back already-materialized results.
type commitSliceIter struct {
	series []*Commit
	pos    int
}

func NewCommitSliceIter(series []*Commit) CommitIter {
	return &commitSliceIter{series: series}
}

func (i *commitSliceIter) Next() (*Commit, error) {
	if i.pos >= len(i.series) {
		return nil, io.EOF
	}
	c := i.series[i.pos]
	i.pos++
	return c, nil
}

func (i *commitSliceIter) ForEach(cb func(*Commit) error) error {
	for {
		c, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(c); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *commitSliceIter) Close() { i.pos = len(i.series) }
