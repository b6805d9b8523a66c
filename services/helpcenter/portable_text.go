package helpcenter

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Span is a run of text inside a Portable Text block.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// Block is a Portable Text paragraph.
type Block struct {
	Type     string `json:"_type"`
	Key      string `json:"_key"`
	Style    string `json:"style"`
	MarkDefs []any  `json:"markDefs"`
	Children []Span `json:"children"`
}

var blankLines = regexp.MustCompile(`\n[ \t\f\v]*\n\s*`)

// HTMLToPortableText strips markup from s and emits one normal block per
// paragraph, paragraphs being separated by blank lines. Inline formatting is
// not preserved.
func HTMLToPortableText(s string) []Block {
	text := stripTags(s)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := []Block{}
	for _, para := range blankLines.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		i := strconv.Itoa(len(blocks))
		blocks = append(blocks, Block{
			Type:     "block",
			Key:      "block-" + i,
			Style:    "normal",
			MarkDefs: []any{},
			Children: []Span{{
				Type:  "span",
				Key:   "span-" + i,
				Text:  para,
				Marks: []string{},
			}},
		})
	}
	return blocks
}

// stripTags keeps the decoded text content of s, dropping script and style bodies.
func stripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawText(tag []byte) bool {
	t := string(tag)
	return t == "script" || t == "style"
}
