package relabel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridplate/gridplate/rules"
)

// SkipMarker is the reserved value in a custom label list meaning "no
// label exists for this index"; mapping an index onto it is an error.
const SkipMarker = "_"

// ToLetter converts a 1-based index to bijective base-26 letters:
// 1=a, 26=z, 27=aa.
func ToLetter(n int, upper bool) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("index must be >= 1, got %d", n)
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('a'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	text := string(buf)
	if upper {
		return strings.ToUpper(text), nil
	}
	return text, nil
}

// FormatIndex renders a 1-based index according to the format type.
// Custom formats look the index up in customLabels; out-of-range indices
// and the reserved skip marker are errors.
func FormatIndex(index int, formatType rules.FormatType, padding int, customLabels []string) (string, error) {
	switch formatType {
	case rules.FormatNumber:
		if padding > 0 {
			return fmt.Sprintf("%0*d", padding, index), nil
		}
		return strconv.Itoa(index), nil
	case rules.FormatLetter:
		return ToLetter(index, false)
	case rules.FormatLetterUpper:
		return ToLetter(index, true)
	case rules.FormatCustom:
		if len(customLabels) == 0 {
			return "", fmt.Errorf("custom labels required for custom format type")
		}
		if index < 1 || index > len(customLabels) {
			return "", fmt.Errorf("index %d out of range for custom labels (valid: 1-%d)", index, len(customLabels))
		}
		label := customLabels[index-1]
		if label == SkipMarker {
			return "", fmt.Errorf("index %d maps to reserved skip marker %q in custom labels", index, SkipMarker)
		}
		return label, nil
	}
	return "", fmt.Errorf("unknown format type: %s", formatType)
}

// GenerateLabel expands a label template. Placeholders: {x} and {y} are
// the formatted indices, {x_raw} and {y_raw} the unformatted ones, {cx}
// and {cy} the shape center at 2 decimals.
func GenerateLabel(template string, indexX, indexY int, centerX, centerY float64, format rules.FormatSpec) (string, error) {
	x, err := FormatIndex(indexX, format.XType, format.XPadding, format.CustomX)
	if err != nil {
		return "", err
	}
	y, err := FormatIndex(indexY, format.YType, format.YPadding, format.CustomY)
	if err != nil {
		return "", err
	}

	return strings.NewReplacer(
		"{x}", x,
		"{y}", y,
		"{x_raw}", strconv.Itoa(indexX),
		"{y_raw}", strconv.Itoa(indexY),
		"{cx}", fmt.Sprintf("%.2f", centerX),
		"{cy}", fmt.Sprintf("%.2f", centerY),
	).Replace(template), nil
}
