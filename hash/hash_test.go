package hash

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Test hooks gocheck into `go test`, matching the teacher's long-running
// mixed use of testify and gocheck across its test suites.
func Test(t *testing.T) { TestingT(t) }

type HashSuite struct{}

var _ = Suite(&HashSuite{})

func (s *HashSuite) TestZeroIsZero(c *C) {
	c.Assert(Zero.IsZero(), Equals, true)
	c.Assert(ID{1}.IsZero(), Equals, false)
}

func (s *HashSuite) TestOfIsDeterministic(c *C) {
	a := Of([]byte("blob 5\x00hello"))
	b := Of([]byte("blob 5\x00hello"))
	c.Assert(a, Equals, b)
}

func (s *HashSuite) TestFromHexRoundTrip(c *C) {
	id := Of([]byte("content"))
	parsed, err := FromHex(id.String())
	c.Assert(err, IsNil)
	c.Assert(parsed, Equals, id)
}

func (s *HashSuite) TestFromHexRejectsBadLength(c *C) {
	_, err := FromHex("abc")
	c.Assert(err, ErrorMatches, "hash: invalid hex identity.*")
}

func (s *HashSuite) TestFromHexRejectsBadHex(c *C) {
	_, err := FromHex("zz" + id40Suffix())
	c.Assert(err, ErrorMatches, "hash: invalid hex identity.*")
}

func id40Suffix() string {
	out := make([]byte, HexSize-2)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}

func (s *HashSuite) TestFromBytesRejectsWrongLength(c *C) {
	_, err := FromBytes([]byte{1, 2, 3})
	c.Assert(err, NotNil)
}

func (s *HashSuite) TestValidHex(c *C) {
	id := Of([]byte("content"))
	c.Assert(ValidHex(id.String()), Equals, true)
	c.Assert(ValidHex("not-hex"), Equals, false)
}

func (s *HashSuite) TestCompareAndSort(c *C) {
	a := MustFromHex("000000000000000000000000000000000000000a")
	b := MustFromHex("000000000000000000000000000000000000000b")
	c.Assert(a.Compare(b) < 0, Equals, true)
	c.Assert(b.Compare(a) > 0, Equals, true)
	c.Assert(a.Compare(a), Equals, 0)

	ids := []ID{b, a}
	Sort(ids)
	c.Assert(ids, DeepEquals, []ID{a, b})
}

func (s *HashSuite) TestStreamingHashMatchesOf(c *C) {
	h := New()
	h.Write([]byte("blob "))
	h.Write([]byte("5\x00hello"))
	c.Assert(h.Sum(), Equals, Of([]byte("blob 5\x00hello")))
}
