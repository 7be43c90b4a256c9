// CLAUDE:SUMMARY Minimal PDF content-stream walk — ruled-line segments and positioned text.
package pdftab

import (
	"strconv"
	"strings"
)

// segment is a straight path segment in page coordinates.
type segment struct {
	x1, y1, x2, y2 float64
}

func (s segment) horizontal(tol float64) bool { return abs(s.y1-s.y2) <= tol }
func (s segment) vertical(tol float64) bool   { return abs(s.x1-s.x2) <= tol }

func (s segment) length() float64 {
	dx, dy := s.x2-s.x1, s.y2-s.y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// fragment is a text show operation anchored at its text-line position.
type fragment struct {
	x, y float64
	text string
}

// walkContent interprets the operators of a page content stream far enough
// to recover stroked/filled line work and positioned text. Transform
// matrices are not composed; coordinates are the raw operands, which holds
// for the flat single-matrix streams ruled tariff grids are made of.
func walkContent(data []byte) ([]segment, []fragment) {
	var (
		segments []segment
		frags    []fragment

		nums    []float64
		strs    []string
		pending []segment

		curX, curY     float64
		startX, startY float64
		lineX, lineY   float64
		leading        = 12.0
	)

	lastN := func(n int) []float64 {
		if len(nums) < n {
			pad := make([]float64, n)
			copy(pad[n-len(nums):], nums)
			return pad
		}
		return nums[len(nums)-n:]
	}

	emitText := func() {
		text := strings.TrimSpace(strings.Join(strs, ""))
		if text != "" {
			frags = append(frags, fragment{x: lineX, y: lineY, text: text})
		}
	}
	reset := func() { nums = nums[:0]; strs = strs[:0] }

	tok := newTokenizer(data)
	for {
		t, ok := tok.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokNumber:
			nums = append(nums, t.num)
		case tokString:
			strs = append(strs, t.str)
		case tokOperator:
			switch t.str {
			case "m":
				v := lastN(2)
				curX, curY = v[0], v[1]
				startX, startY = curX, curY
			case "l":
				v := lastN(2)
				pending = append(pending, segment{curX, curY, v[0], v[1]})
				curX, curY = v[0], v[1]
			case "h":
				pending = append(pending, segment{curX, curY, startX, startY})
				curX, curY = startX, startY
			case "re":
				v := lastN(4)
				x, y, w, h := v[0], v[1], v[2], v[3]
				pending = append(pending,
					segment{x, y, x + w, y},
					segment{x, y + h, x + w, y + h},
					segment{x, y, x, y + h},
					segment{x + w, y, x + w, y + h},
				)
			case "S", "s", "B", "b", "B*", "b*", "f", "F", "f*":
				segments = append(segments, pending...)
				pending = pending[:0]
			case "n":
				pending = pending[:0]
			case "BT":
				lineX, lineY = 0, 0
			case "Tm":
				v := lastN(6)
				lineX, lineY = v[4], v[5]
			case "Td":
				v := lastN(2)
				lineX += v[0]
				lineY += v[1]
			case "TD":
				v := lastN(2)
				lineX += v[0]
				lineY += v[1]
				if v[1] != 0 {
					leading = -v[1]
				}
			case "TL":
				v := lastN(1)
				leading = v[0]
			case "T*":
				lineY -= leading
			case "Tj", "TJ":
				emitText()
			case "'":
				lineY -= leading
				emitText()
			case "\"":
				lineY -= leading
				emitText()
			}
			reset()
		}
	}
	return segments, frags
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokOperator
	tokOther
)

type token struct {
	kind tokenKind
	num  float64
	str  string
}

type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer { return &tokenizer{data: data} }

func (t *tokenizer) next() (token, bool) {
	d := t.data
	for t.pos < len(d) {
		c := d[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0:
			t.pos++
		case c == '%':
			for t.pos < len(d) && d[t.pos] != '\n' {
				t.pos++
			}
		case c == '(':
			return token{kind: tokString, str: t.readString()}, true
		case c == '<':
			// Hex string or dict open: skip both. Hex-encoded show text is
			// CID material this walk cannot map to Unicode anyway.
			t.skipAngle()
		case c == '>':
			t.pos++
		case c == '[' || c == ']' || c == '{' || c == '}':
			t.pos++
		case c == '/':
			t.pos++
			for t.pos < len(d) && !isDelim(d[t.pos]) {
				t.pos++
			}
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := t.pos
			t.pos++
			for t.pos < len(d) && (d[t.pos] == '.' || (d[t.pos] >= '0' && d[t.pos] <= '9')) {
				t.pos++
			}
			if v, err := strconv.ParseFloat(string(d[start:t.pos]), 64); err == nil {
				return token{kind: tokNumber, num: v}, true
			}
		default:
			start := t.pos
			for t.pos < len(d) && !isDelim(d[t.pos]) {
				t.pos++
			}
			if t.pos > start {
				return token{kind: tokOperator, str: string(d[start:t.pos])}, true
			}
			t.pos++
		}
	}
	return token{}, false
}

// readString consumes a parenthesized PDF string, honoring nesting and
// escapes, and returns the decoded bytes.
func (t *tokenizer) readString() string {
	d := t.data
	t.pos++ // opening paren
	var sb strings.Builder
	depth := 1
	for t.pos < len(d) {
		c := d[t.pos]
		if c == '\\' && t.pos+1 < len(d) {
			t.pos++
			switch d[t.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '(', ')', '\\':
				sb.WriteByte(d[t.pos])
			default:
				if d[t.pos] >= '0' && d[t.pos] <= '7' {
					val := int(d[t.pos] - '0')
					for k := 0; k < 2 && t.pos+1 < len(d) && d[t.pos+1] >= '0' && d[t.pos+1] <= '7'; k++ {
						t.pos++
						val = val*8 + int(d[t.pos]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(d[t.pos])
				}
			}
			t.pos++
			continue
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				t.pos++
				break
			}
		}
		sb.WriteByte(c)
		t.pos++
	}
	return sb.String()
}

func (t *tokenizer) skipAngle() {
	d := t.data
	t.pos++
	if t.pos < len(d) && d[t.pos] == '<' { // dict open <<
		t.pos++
		return
	}
	for t.pos < len(d) && d[t.pos] != '>' {
		t.pos++
	}
	if t.pos < len(d) {
		t.pos++
	}
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
