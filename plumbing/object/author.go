package object

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature is an author or committer record: a display name, an email,
// and a point in time expressed as a UNIX timestamp plus a raw timezone
// offset string (e.g. "+0200"), exactly as git's own commit/tag headers
// encode it.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Decode parses "Name <email> unixts tz" into s.
func (s *Signature) Decode(b []byte) {
	open := bytes.LastIndexByte(b, '<')
	close := bytes.LastIndexByte(b, '>')
	if open < 0 || close < 0 || close < open {
		s.Name = string(bytes.TrimSpace(b))
		return
	}

	s.Name = string(bytes.TrimSpace(b[:open]))
	s.Email = string(b[open+1 : close])

	hasTime := close+2 < len(b)
	if !hasTime {
		return
	}

	ts, tz, _ := strings.Cut(strings.TrimSpace(string(b[close+2:])), " ")
	if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
		s.When = time.Unix(unix, 0).In(time.FixedZone("", parseTZOffsetSeconds(tz)))
	}
}

// Encode renders s the way Decode parses it.
func (s *Signature) Encode(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, "%s <%s>", s.Name, s.Email); err != nil {
		return err
	}
	if !s.When.IsZero() {
		_, offset := s.When.Zone()
		if _, err := fmt.Fprintf(w, " %d %s", s.When.Unix(), formatTZ(offset)); err != nil {
			return err
		}
	}
	return nil
}

func formatTZ(offsetSeconds int) string {
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	h := offsetSeconds / 3600
	m := (offsetSeconds % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

func (s Signature) String() string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// parseTZOffsetSeconds parses a raw "+0200"-style offset into seconds
// east of UTC, used where a caller wants the offset without building a
// full Signature.
func parseTZOffsetSeconds(tz string) int {
	tz = strings.TrimSpace(tz)
	if len(tz) != 5 {
		return 0
	}
	sign := 1
	if tz[0] == '-' {
		sign = -1
	}
	h, err1 := strconv.Atoi(tz[1:3])
	m, err2 := strconv.Atoi(tz[3:5])
	if err1 != nil || err2 != nil {
		return 0
	}
	return sign * (h*3600 + m*60)
}
