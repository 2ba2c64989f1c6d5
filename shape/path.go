package shape

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/gridplate/gridplate/svgdoc"
)

// pathToken is one lexeme of a path d attribute: a recognized command
// letter or a number. Unrecognized characters are dropped by the scanner.
type pathToken struct {
	cmd byte // 0 for numbers
	val float64
}

// ParseSegment parses a <path> element that draws straight line segments
// (not an arc). Supports M/m, L/l, H/h, V/v and Z/z commands; the first
// move becomes the start point and the last drawn point the end point.
// Returns nil when the d attribute is empty, contains no move command, or
// a command is missing its coordinates.
func ParseSegment(el *etree.Element) *Segment {
	if el.Tag != "path" {
		return nil
	}
	if el.SelectAttrValue(svgdoc.AttrArcType, "") == "arc" {
		return nil
	}
	d := el.SelectAttrValue("d", "")
	if d == "" {
		return nil
	}

	tokens := scanPath(d)
	if len(tokens) == 0 {
		return nil
	}

	var currentX, currentY float64
	var startX, startY, endX, endY float64
	hasStart := false

	num := func(i int) (float64, bool) {
		if i >= len(tokens) || tokens[i].cmd != 0 {
			return 0, false
		}
		return tokens[i].val, true
	}

	for i := 0; i < len(tokens); {
		switch tokens[i].cmd {
		case 'M', 'm':
			x, okX := num(i + 1)
			y, okY := num(i + 2)
			if !okX || !okY {
				return nil
			}
			if tokens[i].cmd == 'm' && hasStart {
				x += currentX
				y += currentY
			}
			currentX, currentY = x, y
			if !hasStart {
				startX, startY = x, y
				hasStart = true
			}
			endX, endY = x, y
			i += 3
		case 'L':
			x, okX := num(i + 1)
			y, okY := num(i + 2)
			if !okX || !okY {
				return nil
			}
			currentX, currentY = x, y
			endX, endY = x, y
			i += 3
		case 'l':
			dx, okX := num(i + 1)
			dy, okY := num(i + 2)
			if !okX || !okY {
				return nil
			}
			currentX += dx
			currentY += dy
			endX, endY = currentX, currentY
			i += 3
		case 'H':
			x, ok := num(i + 1)
			if !ok {
				return nil
			}
			currentX = x
			endX, endY = x, currentY
			i += 2
		case 'h':
			dx, ok := num(i + 1)
			if !ok {
				return nil
			}
			currentX += dx
			endX, endY = currentX, currentY
			i += 2
		case 'V':
			y, ok := num(i + 1)
			if !ok {
				return nil
			}
			currentY = y
			endX, endY = currentX, y
			i += 2
		case 'v':
			dy, ok := num(i + 1)
			if !ok {
				return nil
			}
			currentY += dy
			endX, endY = currentX, currentY
			i += 2
		case 'Z', 'z':
			endX, endY = startX, startY
			currentX, currentY = startX, startY
			i++
		default:
			// stray number in command position
			i++
		}
	}

	if !hasStart {
		return nil
	}

	return &Segment{
		el:     el,
		id:     el.SelectAttrValue("id", ""),
		StartX: startX,
		StartY: startY,
		EndX:   endX,
		EndY:   endY,
	}
}

// scanPath tokenizes a d attribute into recognized command letters and
// numbers, skipping everything else (separators, unknown commands).
func scanPath(d string) []pathToken {
	var tokens []pathToken
	for i := 0; i < len(d); {
		c := d[i]
		switch c {
		case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'Z', 'z':
			tokens = append(tokens, pathToken{cmd: c})
			i++
		default:
			if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
				start := i
				if c == '+' || c == '-' {
					i++
				}
				digits := false
				for i < len(d) && d[i] >= '0' && d[i] <= '9' {
					i++
					digits = true
				}
				if i < len(d) && d[i] == '.' {
					j := i + 1
					frac := false
					for j < len(d) && d[j] >= '0' && d[j] <= '9' {
						j++
						frac = true
					}
					if frac {
						i = j
						digits = true
					}
				}
				if !digits {
					i++ // lone sign or dot
					continue
				}
				if v, err := strconv.ParseFloat(d[start:i], 64); err == nil {
					tokens = append(tokens, pathToken{val: v})
				}
			} else {
				i++
			}
		}
	}
	return tokens
}
