package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadMapping reads a rune replacement table, one "from\tto" pair per line.
// Used for the full-width to half-width normalization dictionary.
func LoadMapping(dictPath string) (map[rune]rune, error) {
	file, err := os.Open(dictPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mapping := make(map[rune]rune)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if len(line) == 0 {
			continue
		}
		terms := strings.Split(line, "\t")
		if len(terms) != 2 {
			return nil, fmt.Errorf("error line %q in file %s", line, dictPath)
		}
		from := []rune(terms[0])
		to := []rune(terms[1])
		if len(from) != 1 || len(to) != 1 {
			return nil, fmt.Errorf("error line %q in file %s: expected single rune pair", line, dictPath)
		}
		mapping[from[0]] = to[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mapping, nil
}
