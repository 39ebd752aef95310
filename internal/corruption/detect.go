// Package corruption scans text-bearing leaves of a generated document for
// the two damage signatures a generative model leaves behind: markup cut off
// mid-stream and opening/closing tag counts that no longer line up.
package corruption

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"contentguard/internal/doctree"
)

type IssueKind string

const (
	KindTruncated    IssueKind = "truncated-content"
	KindUnbalanced   IssueKind = "unbalanced-tags"
	KindInvalidInput IssueKind = "invalid-input"
)

type Issue struct {
	Path   doctree.Path
	Kind   IssueKind
	Detail string
}

// trailingWindow is how far back from the end of a leaf the mid-sentence
// heuristic looks when an opened tag was never closed.
const trailingWindow = 80

// voidElements never take a closing tag and are exempt from balancing.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Detect walks every string leaf of the document and reports corruption
// issues with the path to each flagged leaf. An empty result means clean.
// A null or absent root yields a single invalid-input issue.
func Detect(doc *doctree.Node) []Issue {
	if doc.Kind() == doctree.KindNull {
		return []Issue{{
			Path:   doctree.RootPath(),
			Kind:   KindInvalidInput,
			Detail: "document root is null or absent",
		}}
	}
	var issues []Issue
	walk(doctree.RootPath(), doc, &issues)
	return issues
}

func walk(path doctree.Path, node *doctree.Node, issues *[]Issue) {
	switch node.Kind() {
	case doctree.KindObject:
		for _, key := range node.Keys() {
			child, _ := node.Field(key)
			walk(path.Key(key), child, issues)
		}
	case doctree.KindArray:
		for i := 0; i < node.Len(); i++ {
			walk(path.Index(i), node.At(i), issues)
		}
	case doctree.KindString:
		*issues = append(*issues, scanLeaf(path, node.Str())...)
	}
}

func scanLeaf(path doctree.Path, text string) []Issue {
	if !strings.Contains(text, "<") {
		return nil
	}

	var issues []Issue

	if endsMidTag(text) {
		issues = append(issues, Issue{
			Path:   path,
			Kind:   KindTruncated,
			Detail: "content ends inside an unterminated tag",
		})
	}

	counts, open, tail := tokenize(text)

	if len(open) > 0 && endsMidSentence(tail) {
		issues = append(issues, Issue{
			Path: path,
			Kind: KindTruncated,
			Detail: fmt.Sprintf("content ends mid-sentence with <%s> still open",
				open[len(open)-1]),
		})
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := counts[name]
		switch {
		case c.opened == 0 && c.closed > 0:
			issues = append(issues, Issue{
				Path:   path,
				Kind:   KindUnbalanced,
				Detail: fmt.Sprintf("closing </%s> without a matching opening tag", name),
			})
		case c.opened != c.closed:
			issues = append(issues, Issue{
				Path:   path,
				Kind:   KindUnbalanced,
				Detail: fmt.Sprintf("<%s> opened %d times but closed %d times", name, c.opened, c.closed),
			})
		}
	}
	return issues
}

type tagCount struct {
	opened int
	closed int
}

// tokenize runs the html tokenizer over the leaf and returns per-tag counts,
// the stack of tags still open at the end, and the final run of plain text.
func tokenize(text string) (map[string]*tagCount, []string, string) {
	z := html.NewTokenizer(strings.NewReader(text))
	counts := make(map[string]*tagCount)
	var open []string
	var tail string

	for {
		switch z.Next() {
		case html.ErrorToken:
			return counts, open, tail
		case html.StartTagToken:
			name, _ := z.TagName()
			n := strings.ToLower(string(name))
			if voidElements[n] {
				continue
			}
			count(counts, n).opened++
			open = append(open, n)
		case html.SelfClosingTagToken:
			// Balanced by definition.
		case html.EndTagToken:
			name, _ := z.TagName()
			n := strings.ToLower(string(name))
			if voidElements[n] {
				continue
			}
			count(counts, n).closed++
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == n {
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		case html.TextToken:
			tail = string(z.Text())
		}
	}
}

func count(counts map[string]*tagCount, name string) *tagCount {
	c, ok := counts[name]
	if !ok {
		c = &tagCount{}
		counts[name] = c
	}
	return c
}

// endsMidTag reports whether the text stops inside what looks like a tag:
// a '<' with no later '>', immediately followed by a letter or '/'.
func endsMidTag(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if strings.HasSuffix(trimmed, "<") {
		return true
	}
	lastOpen := strings.LastIndex(trimmed, "<")
	if lastOpen < 0 || lastOpen <= strings.LastIndex(trimmed, ">") {
		return false
	}
	rest := trimmed[lastOpen+1:]
	if rest == "" {
		return true
	}
	first := rune(rest[0])
	return first == '/' || unicode.IsLetter(first)
}

// endsMidSentence checks the trailing window of plain text for a sentence
// terminal. Translated content legitimately ends many ways, so only clear
// fragment endings are flagged.
func endsMidSentence(tail string) bool {
	trimmed := strings.TrimRightFunc(tail, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	if len(runes) > trailingWindow {
		runes = runes[len(runes)-trailingWindow:]
	}
	last := runes[len(runes)-1]
	switch last {
	case '.', '!', '?', '…', ':', ';', '"', '\'', '”', '’', ')', ']':
		return false
	}
	return true
}
