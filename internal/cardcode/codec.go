// Package cardcode converts between the printed card code shown on a
// physical card (e.g. SOR-042) and the canonical fixed-width code used for
// storage and lookup (e.g. 01010042).
//
// Canonical layout for standard sets is SSMMNNNN: a 2-digit set id, a
// 2-digit middle selector, then the 4-digit number field. Special sets
// (promotional and intro products) use PPPMMNNNN with a 3-character prefix
// of one letter and two digits. The first digit of the number field is a
// type flag: 1 for Leader and Base cards, 0 for everything else; the
// remaining three digits are the zero-padded sequence number.
package cardcode

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

// ErrInvalidFormat is returned when a code cannot be split into a set token
// and a numeric tail, or names a set that is not cataloged.
var ErrInvalidFormat = errors.New("invalid card code format")

const (
	middleStandard = "01"
	middlePromo    = "09" // promotional cards only

	promoPrefix = "G25"

	// The leading digit of the 4-wide number field is the type flag, so
	// only three digits remain for the sequence even though the field
	// could hold 9999.
	maxSequence = 1000 - 1
)

// Directional set tables. Names and prefixes live in separate maps so a
// prefix can never be looked up in the name keyspace by accident.
var setNameToPrefix = map[string]string{
	"SOR":        "01",
	"SHD":        "02",
	"TWI":        "03",
	"JTL":        "04",
	"LOF":        "05",
	"PROMO":      "G25",
	"INTRO-HOTH": "I01",
}

var setPrefixToName = map[string]string{
	"01": "SOR",
	"02": "SHD",
	"03": "TWI",
	"04": "JTL",
	"05": "LOF",
}

// Known special sets, by internal display name and by canonical prefix.
// This allow-list is the source of truth for cataloged sets; the structural
// letter+digit check in IsSpecialSet is only a forward-compatibility
// fallback for sets that have not been cataloged yet.
var specialSets = map[string]bool{
	"PROMO":      true,
	"INTRO-HOTH": true,
	"G25":        true,
	"I01":        true,
}

var (
	// Printed codes: a set token joined to a 1-4 digit number, with or
	// without a separator. Without one, the split point is a letters-only
	// name, a letter+2-digit prefix, or a 2-digit set id followed by the
	// numeric tail.
	printedWithSep = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9-]{0,11})-(\d{1,4})$`)
	printedNoSep   = regexp.MustCompile(`^([A-Za-z]{2,5}|[A-Za-z]\d{2}|\d{2})(\d{1,4})$`)

	fullStandard = regexp.MustCompile(`^\d{8}$`)
	fullSpecial  = regexp.MustCompile(`^[A-Z]\d{8}$`)

	// Letter immediately followed by a digit: the structural shape shared
	// by promo and intro prefixes.
	specialShape = regexp.MustCompile(`^[A-Za-z]\d`)

	twoDigits      = regexp.MustCompile(`^\d{2}$`)
	letterTwoDigit = regexp.MustCompile(`^[A-Z]\d{2}$`)
)

// Identity is the structured form of a canonical code.
type Identity struct {
	SetCode        string `json:"set_code"`        // canonical prefix, e.g. "01" or "G25"
	MiddleSelector string `json:"middle_selector"` // "01" or "09"
	SequenceNumber int    `json:"sequence_number"`
	IsLeaderOrBase bool   `json:"is_leader_or_base"`
}

// PrintedSequence renders the sequence number as printed on the card: a
// minimum-3-digit decimal with no upper bound enforced.
func (id Identity) PrintedSequence() string {
	return fmt.Sprintf("%03d", id.SequenceNumber)
}

// resolveSetToken maps a printed set token to its canonical prefix. Already
// canonical tokens (2-digit ids, letter+2-digit prefixes) pass through
// unchanged; anything else must be a cataloged internal set name.
func resolveSetToken(token string) (string, bool) {
	upper := strings.ToUpper(token)
	if twoDigits.MatchString(upper) || letterTwoDigit.MatchString(upper) {
		return upper, true
	}
	prefix, ok := setNameToPrefix[upper]
	return prefix, ok
}

// splitPrinted separates a printed code into its set token and numeric tail.
func splitPrinted(code string) (setTok, numTok string, ok bool) {
	if m := printedWithSep.FindStringSubmatch(code); m != nil {
		return m[1], m[2], true
	}
	if m := printedNoSep.FindStringSubmatch(code); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// PrintedToFull converts a printed code like "SOR-042" or "G25-3" to its
// canonical form. The card type is needed because the printed code does not
// carry the Leader/Base type flag.
func PrintedToFull(printed string, cardType models.CardType) (string, error) {
	code := strings.TrimSpace(printed)
	setTok, numTok, ok := splitPrinted(code)
	if !ok {
		return "", fmt.Errorf("%w: %q cannot be split into set and number", ErrInvalidFormat, printed)
	}

	prefix, ok := resolveSetToken(setTok)
	if !ok {
		return "", fmt.Errorf("%w: unknown set %q", ErrInvalidFormat, setTok)
	}

	seq, err := strconv.Atoi(numTok)
	if err != nil || seq < 1 {
		return "", fmt.Errorf("%w: bad sequence number %q", ErrInvalidFormat, numTok)
	}
	if seq > maxSequence {
		return "", fmt.Errorf("%w: sequence number %d exceeds the %d ceiling", ErrInvalidFormat, seq, maxSequence)
	}

	middle := middleStandard
	if prefix == promoPrefix {
		middle = middlePromo
	}
	flag := 0
	if cardType.IsLeaderOrBase() {
		flag = 1
	}
	return fmt.Sprintf("%s%s%d%03d", prefix, middle, flag, seq), nil
}

// FullToPrinted converts a canonical code back to its printed form. Standard
// sets render with their internal display name; special sets render with the
// bare canonical prefix.
func FullToPrinted(full string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(full))

	var prefix, rest string
	switch {
	case fullStandard.MatchString(code):
		prefix, rest = code[:2], code[2:]
	case fullSpecial.MatchString(code):
		prefix, rest = code[:3], code[3:]
	default:
		return "", fmt.Errorf("%w: %q is not a canonical code", ErrInvalidFormat, full)
	}

	// rest is MM + type flag + 3-digit sequence; the flag is dropped on
	// the way out.
	seq, err := strconv.Atoi(rest[3:])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, full)
	}

	name, ok := setPrefixToName[prefix]
	if !ok {
		name = prefix
	}
	return fmt.Sprintf("%s-%03d", name, seq), nil
}

// Parse decodes either a printed or a canonical code into an Identity. It
// returns nil for any structurally invalid input: probing unknown strings is
// an expected query pattern, not an error.
func Parse(code string) *Identity {
	c := strings.TrimSpace(code)
	if IsPrintedFormat(c) {
		full, err := PrintedToFull(c, "")
		if err != nil {
			return nil
		}
		c = full
	}
	c = strings.ToUpper(c)

	var prefix, rest string
	switch {
	case fullStandard.MatchString(c):
		prefix, rest = c[:2], c[2:]
	case fullSpecial.MatchString(c):
		prefix, rest = c[:3], c[3:]
	default:
		return nil
	}

	middle := rest[:2]
	if middle != middleStandard && middle != middlePromo {
		return nil
	}
	flag := rest[2]
	if flag != '0' && flag != '1' {
		return nil
	}
	seq, err := strconv.Atoi(rest[3:])
	if err != nil {
		return nil
	}

	return &Identity{
		SetCode:        prefix,
		MiddleSelector: middle,
		SequenceNumber: seq,
		IsLeaderOrBase: flag == '1',
	}
}

// IsPrintedFormat reports whether code looks like a printed card code. A
// well-formed code satisfies exactly one of IsPrintedFormat and
// IsFullFormat.
func IsPrintedFormat(code string) bool {
	c := strings.TrimSpace(code)
	if IsFullFormat(c) {
		return false
	}
	return printedWithSep.MatchString(c) || printedNoSep.MatchString(c)
}

// IsFullFormat reports whether code is in the canonical fixed-width format.
func IsFullFormat(code string) bool {
	c := strings.ToUpper(strings.TrimSpace(code))
	return fullStandard.MatchString(c) || fullSpecial.MatchString(c)
}

// IsSpecialSet reports whether the given internal set name or canonical
// prefix denotes a promotional or intro-style set. Cataloged sets are
// answered from the allow-list; the structural pattern is only a fallback so
// future special sets are recognized before they are cataloged.
func IsSpecialSet(code string) bool {
	c := strings.ToUpper(strings.TrimSpace(code))
	if specialSets[c] {
		return true
	}
	if _, standard := setNameToPrefix[c]; standard {
		return false
	}
	return specialShape.MatchString(c)
}
