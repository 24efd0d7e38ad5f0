package format

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/odysseus0/aidigest/internal/model"
)

// ChatLimit is the longest message the chat API accepts.
const ChatLimit = 4096

const (
	chatTitle     = "🤖 <b>Daily AI News Digest</b>\n\n"
	chatNoUpdates = "🤖 <b>Daily AI News Digest - No New Updates</b>\n\n" + NoUpdatesText
	chatSeparator = "➖➖➖➖➖➖➖➖\n\n"
	contLabel     = "(cont.)"
)

// block is one field of a chat message: fixed markup around escaped text.
// contHead replaces head on the second and later pieces of a split field.
type block struct {
	head, text, tail, contHead string
}

func (b block) render() string {
	return b.head + html.EscapeString(b.text) + b.tail
}

func fixed(markup string) block {
	return block{head: markup}
}

// ChatMessages renders digests as HTML chat messages of at most limit runes.
// Every feed starts a new message; within a feed, fields are packed greedily
// and a field that cannot fit in one message is split across several.
func ChatMessages(digests []model.FeedDigest, limit int) []string {
	if limit <= 0 || limit > ChatLimit {
		limit = ChatLimit
	}
	if AllEmpty(digests) {
		return []string{chatNoUpdates}
	}

	p := &packer{limit: limit}
	p.add(fixed(chatTitle))
	for i, d := range digests {
		if i > 0 {
			p.flush()
		}
		for _, b := range feedBlocks(d, limit) {
			p.add(b)
		}
	}
	p.flush()
	return p.out
}

func feedBlocks(d model.FeedDigest, limit int) []block {
	blocks := []block{{
		head:     "📰 <b>",
		text:     d.Source.Name,
		tail:     "</b>\n",
		contHead: "📰 <b>" + contLabel + " ",
	}}
	for _, s := range d.Record.Sections {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		title := html.EscapeString(s.Title)
		blocks = append(blocks, block{
			head:     "<b>" + title + ":</b>\n",
			text:     s.Text,
			tail:     "\n\n",
			contHead: "<b>" + title + " " + contLabel + ":</b>\n",
		})
	}
	if len(d.Record.Sources) > 0 {
		blocks = append(blocks, fixed("<b>Sources:</b>\n"))
		for _, src := range d.Record.Sources {
			blocks = append(blocks, sourceBlock(src, limit))
		}
	}
	return append(blocks, fixed(chatSeparator))
}

// sourceBlock links the title; a line too long for one message falls back to
// plain "title: link" text so it can be split.
func sourceBlock(src model.SourceRef, limit int) block {
	line := "• <a href='" + html.EscapeString(src.Link) + "'>" + html.EscapeString(src.Title) + "</a>\n"
	if runeLen(line) <= limit {
		return fixed(line)
	}
	return block{
		head:     "• ",
		text:     src.Title + ": " + src.Link,
		tail:     "\n",
		contHead: "• " + contLabel + " ",
	}
}

type packer struct {
	limit int
	out   []string
	cur   strings.Builder
	n     int
}

func (p *packer) flush() {
	if p.n == 0 {
		return
	}
	p.out = append(p.out, p.cur.String())
	p.cur.Reset()
	p.n = 0
}

func (p *packer) write(s string) {
	p.cur.WriteString(s)
	p.n += runeLen(s)
}

func (p *packer) add(b block) {
	rendered := b.render()
	size := runeLen(rendered)
	if p.n+size <= p.limit {
		p.write(rendered)
		return
	}
	if size <= p.limit {
		p.flush()
		p.write(rendered)
		return
	}

	p.flush()
	head := b.head
	overhead := max(runeLen(b.head), runeLen(b.contHead)) + runeLen(b.tail)
	pieces := splitEscaped(b.text, p.limit-overhead)
	for i, piece := range pieces {
		if i > 0 {
			p.flush()
			head = b.contHead
		}
		p.write(head + html.EscapeString(piece) + b.tail)
	}
}

// splitEscaped cuts text into pieces whose escaped form is at most budget
// runes. A cut prefers the last whitespace in the second half of the window.
// Concatenating the pieces yields text.
func splitEscaped(text string, budget int) []string {
	if budget < 1 {
		budget = 1
	}
	runes := []rune(text)
	var pieces []string
	for len(runes) > 0 {
		end, cost := 0, 0
		for end < len(runes) {
			c := escapedLen(runes[end])
			if cost+c > budget {
				break
			}
			cost += c
			end++
		}
		if end == 0 {
			end = 1
		}
		if end < len(runes) {
			for i := end - 1; i >= end/2 && i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					end = i + 1
					break
				}
			}
		}
		pieces = append(pieces, string(runes[:end]))
		runes = runes[end:]
	}
	return pieces
}

func escapedLen(r rune) int {
	switch r {
	case '&', '\'', '"':
		return 5
	case '<', '>':
		return 4
	default:
		return 1
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
