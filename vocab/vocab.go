package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const oovToken = "OOV"

// Vocab is a fixed token <-> id dictionary loaded from a .dic file.
type Vocab struct {
	tokenIDs map[string]int64
	idTokens map[int64]string
}

// Load reads a dictionary file with one entry per line. A line is either
// "token\tid", "id\ttoken" or a bare token (the id is then the line number).
// The column order is detected from the first two-column line and applied to
// the whole file.
func Load(dictPath string) (*Vocab, error) {
	file, err := os.Open(dictPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	v := &Vocab{
		tokenIDs: make(map[string]int64),
		idTokens: make(map[int64]string),
	}

	var reversed *bool
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		terms := strings.Split(line, "\t")

		var token, rawID string
		switch len(terms) {
		case 2:
			if reversed == nil {
				isDigits := allDigits(terms[0])
				reversed = &isDigits
			}
			if *reversed {
				rawID, token = terms[0], terms[1]
			} else {
				token, rawID = terms[0], terms[1]
			}
		case 1:
			token = terms[0]
			rawID = strconv.Itoa(lineNum)
		default:
			return nil, fmt.Errorf("error line %q in file %s", line, dictPath)
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error line %q in file %s: %w", line, dictPath, err)
		}
		v.tokenIDs[token] = id
		v.idTokens[id] = token
		lineNum++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Vocab) ID(token string) (int64, bool) {
	id, ok := v.tokenIDs[token]
	return id, ok
}

func (v *Vocab) Token(id int64) (string, bool) {
	token, ok := v.idTokens[id]
	return token, ok
}

// OOVID returns the id reserved for out-of-vocabulary tokens.
func (v *Vocab) OOVID() (int64, bool) {
	return v.ID(oovToken)
}

func (v *Vocab) Size() int {
	return len(v.tokenIDs)
}

func allDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
