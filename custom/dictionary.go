package custom

import (
	"fmt"
	"hanlex.com/lac/utils"
	"strings"
)

// Dictionary is a user-supplied word list that overrides model output.
// Entries are kept in a rune prefix tree for longest-match scanning.
type Dictionary struct {
	root node
	size int
}

type node struct {
	children map[rune]*node
	isTerm   bool
	tag      string
}

// Load reads a user dictionary, one entry per line: a word optionally
// followed by a tag, separated by whitespace.
func Load(dictPath string) (*Dictionary, error) {
	lines, err := utils.ReadList(dictPath)
	if err != nil {
		return nil, err
	}

	dict := &Dictionary{}
	for _, line := range lines {
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 1:
			dict.Add(fields[0], "")
		case 2:
			dict.Add(fields[0], fields[1])
		default:
			return nil, fmt.Errorf("error line %q in file %s", line, dictPath)
		}
	}
	return dict, nil
}

func (dict *Dictionary) Add(word string, tag string) {
	runes := []rune(word)
	if len(runes) == 0 {
		return
	}

	cur := &dict.root
	for _, ch := range runes {
		child, ok := cur.children[ch]
		if !ok {
			child = &node{}
			if cur.children == nil {
				cur.children = make(map[rune]*node)
			}
			cur.children[ch] = child
		}
		cur = child
	}
	if !cur.isTerm {
		dict.size++
	}
	cur.isTerm = true
	cur.tag = tag
}

func (dict *Dictionary) Size() int {
	return dict.size
}

// match returns the length in runes of the longest dictionary word starting
// at runes[from], with its tag. Zero length means no match.
func (dict *Dictionary) match(runes []rune, from int) (int, string) {
	cur := &dict.root
	bestLen := 0
	bestTag := ""
	for i := from; i < len(runes); i++ {
		child, ok := cur.children[runes[i]]
		if !ok {
			break
		}
		cur = child
		if cur.isTerm {
			bestLen = i - from + 1
			bestTag = cur.tag
		}
	}
	return bestLen, bestTag
}
