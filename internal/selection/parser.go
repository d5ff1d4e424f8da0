package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	tokenSeparatorConstant                 = ","
	rangeSeparatorConstant                 = "-"
	expectedRangePartCountConstant         = 2
	formatErrorMessageTemplateConstant     = "selection token %q is not a number or a number range"
	outOfRangeErrorMessageTemplateConstant = "selection token %q falls outside options 1-%d"
)

// FormatError reports a selection token that is neither a number nor a number range.
type FormatError struct {
	Token string
}

// Error describes the malformed token.
func (formatError FormatError) Error() string {
	return fmt.Sprintf(formatErrorMessageTemplateConstant, formatError.Token)
}

// OutOfRangeError reports a selection value that does not identify an available option.
type OutOfRangeError struct {
	Token       string
	OptionCount int
}

// Error describes the out-of-range token.
func (outOfRangeError OutOfRangeError) Error() string {
	return fmt.Sprintf(outOfRangeErrorMessageTemplateConstant, outOfRangeError.Token, outOfRangeError.OptionCount)
}

// ParseSelection converts comma-separated operator input such as "2,4-6" into
// sorted zero-based option indexes. Input values are one-based; ranges are
// inclusive; duplicates collapse into a single index.
func ParseSelection(input string, optionCount int) ([]int, error) {
	selectedIndexes := map[int]struct{}{}

	for _, rawToken := range strings.Split(input, tokenSeparatorConstant) {
		token := strings.TrimSpace(rawToken)
		if strings.Contains(token, rangeSeparatorConstant) {
			rangeStart, rangeEnd, rangeParseError := parseRangeToken(token)
			if rangeParseError != nil {
				return nil, rangeParseError
			}
			if rangeStart > rangeEnd {
				return nil, OutOfRangeError{Token: token, OptionCount: optionCount}
			}
			for optionValue := rangeStart; optionValue <= rangeEnd; optionValue++ {
				if optionValue < 1 || optionValue > optionCount {
					return nil, OutOfRangeError{Token: token, OptionCount: optionCount}
				}
				selectedIndexes[optionValue-1] = struct{}{}
			}
			continue
		}

		optionValue, parseError := strconv.Atoi(token)
		if parseError != nil {
			return nil, FormatError{Token: token}
		}
		if optionValue < 1 || optionValue > optionCount {
			return nil, OutOfRangeError{Token: token, OptionCount: optionCount}
		}
		selectedIndexes[optionValue-1] = struct{}{}
	}

	orderedIndexes := make([]int, 0, len(selectedIndexes))
	for selectedIndex := range selectedIndexes {
		orderedIndexes = append(orderedIndexes, selectedIndex)
	}
	sort.Ints(orderedIndexes)

	return orderedIndexes, nil
}

func parseRangeToken(token string) (int, int, error) {
	rangeParts := strings.Split(token, rangeSeparatorConstant)
	if len(rangeParts) != expectedRangePartCountConstant {
		return 0, 0, FormatError{Token: token}
	}

	rangeStart, startParseError := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	if startParseError != nil {
		return 0, 0, FormatError{Token: token}
	}

	rangeEnd, endParseError := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if endParseError != nil {
		return 0, 0, FormatError{Token: token}
	}

	return rangeStart, rangeEnd, nil
}
