package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/vcscore/corevcs/plumbing"
	"github.com/vcscore/corevcs/plumbing/storer"
)

// Tag is an annotated tag: a named, signed-or-not pointer at another
// object (usually a commit), carrying its own tagger and message
// independent of whatever it points at.
type Tag struct {
	Hash       plumbing.ID
	Name       string
	Tagger     Signature
	Message    string
	TargetType plumbing.ObjectType
	Target     plumbing.ID

	PGPSignature string

	s storer.EncodedObjectStorer
}

// Decode parses o's content into t.
func (t *Tag) Decode(s storer.EncodedObjectStorer, o plumbing.EncodedObject) error {
	if o.Type() != plumbing.TagObject {
		return ErrUnsupportedObject
	}

	t.Hash = o.ID()
	t.s = s

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
			return plumbing.NewCorrupt("tag", "read header", err)
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
			if bytes.Equal(bytes.TrimSpace(trimmed), []byte("-----END PGP SIGNATURE-----")) {
				inPGP = false
				t.PGPSignature = pgp.String()
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
		case "object":
			t.Target, err = parseIDField(val)
			if err != nil {
				return err
			}
		case "type":
			t.TargetType, err = plumbing.ParseObjectType(string(val))
			if err != nil {
				return plumbing.NewCorrupt("tag", "bad target type", err)
			}
		case "tag":
			t.Name = string(val)
		case "tagger":
			t.Tagger.Decode(val)
		case "gpgsig":
			inPGP = true
			pgp.Reset()
			pgp.Write(val)
			pgp.WriteByte('\n')
		}

		if eof {
			break
		}
	}

	t.Message = message.String()
	return nil
}

// Encode writes t's canonical byte encoding to w.
func (t *Tag) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "object %s\n", t.Target)
	fmt.Fprintf(bw, "type %s\n", t.TargetType)
	fmt.Fprintf(bw, "tag %s\n", t.Name)
	fmt.Fprint(bw, "tagger ")
	t.Tagger.Encode(bw)
	bw.WriteByte('\n')
	bw.WriteByte('\n')
	bw.WriteString(t.Message)
	if t.PGPSignature != "" {
		bw.WriteString(t.PGPSignature)
	}
	return bw.Flush()
}

// WriteTag canonicalizes and stores t as a new tag object.
func WriteTag(s storer.EncodedObjectStorer, t *Tag) (plumbing.ID, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.TagObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroID, err
	}
	if err := t.Encode(w); err != nil {
		w.Close()
		return plumbing.ZeroID, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroID, err
	}
	return s.SetEncodedObject(obj)
}

// Commit resolves t's target as a commit, following further tag
// dereferences if the chain is tag-of-tag.
func (t *Tag) Commit() (*Commit, error) {
	if t.TargetType != plumbing.CommitObject && t.TargetType != plumbing.TagObject {
		return nil, ErrUnsupportedObject
	}
	return GetCommit(t.s, t.Target)
}

// Object resolves t's immediate target without interpreting it.
func (t *Tag) Object() (plumbing.EncodedObject, error) {
	return t.s.EncodedObject(t.TargetType, t.Target)
}

// GetTag reads and decodes the tag named by id.
func GetTag(s storer.EncodedObjectStorer, id plumbing.ID) (*Tag, error) {
	o, err := s.EncodedObject(plumbing.TagObject, id)
	if err != nil {
		return nil, err
	}
	t := &Tag{}
	return t, t.Decode(s, o)
}

// Peel dereferences a chain of tags down to the first non-tag object,
// the "peeled" value recorded alongside annotated tags in packed-refs.
func Peel(s storer.EncodedObjectStorer, id plumbing.ID) (plumbing.ID, plumbing.ObjectType, error) {
	for {
		o, err := s.EncodedObject(storer.AnyObject, id)
		if err != nil {
			return plumbing.ZeroID, plumbing.InvalidObject, err
		}
		if o.Type() != plumbing.TagObject {
			return id, o.Type(), nil
		}
		t := &Tag{}
		if err := t.Decode(s, o); err != nil {
			return plumbing.ZeroID, plumbing.InvalidObject, err
		}
		id = t.Target
	}
}
