package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextFromPDF flattens the text layer of a PDF, pages joined by newline.
// Within a page every shown string is one item and items are joined by a space.
// Text positioning operators (a new cell or line) add an empty item, so separately
// placed cells end up two spaces apart, and every page ends on such a boundary.
// Scanned pages without a text layer contribute an empty line.
func TextFromPDF(r io.ReaderAt, size int64) (text string, err error) {
	// the parser panics on some malformed xref tables
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page))
	}
	return strings.Join(pages, "\n"), nil
}

// pageText walks the page's content streams in drawing order
func pageText(page pdf.Page) string {
	var items []string
	boundary := func() {
		if len(items) > 0 && items[len(items)-1] != "" {
			items = append(items, "")
		}
	}

	encoders := make(map[string]pdf.TextEncoding)
	var enc pdf.TextEncoding
	show := func(raw string) {
		s := raw
		if enc != nil {
			s = enc.Decode(raw)
		}
		if s != "" {
			items = append(items, s)
		}
	}

	interpret := func(strm pdf.Value) {
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stk.Pop()
			}

			switch op {
			case "Tf":
				if n != 2 {
					return
				}
				fontName := args[0].Name()
				e, ok := encoders[fontName]
				if !ok {
					e = page.Font(fontName).Encoder()
					encoders[fontName] = e
				}
				enc = e
			case "BT", "ET", "Td", "TD", "Tm", "T*":
				boundary()
			case "'", "\"":
				boundary()
				if n > 0 {
					show(args[n-1].RawString())
				}
			case "Tj":
				if n == 1 {
					show(args[0].RawString())
				}
			case "TJ":
				if n != 1 {
					return
				}
				// kerning numbers between the strings stay inside one item
				var b strings.Builder
				for i := 0; i < args[0].Len(); i++ {
					if part := args[0].Index(i); part.Kind() == pdf.String {
						b.WriteString(part.RawString())
					}
				}
				show(b.String())
			}
		})
	}

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			interpret(contents.Index(i))
			boundary()
		}
	} else {
		interpret(contents)
	}

	text := strings.TrimRight(strings.Join(items, " "), " ")
	if text == "" {
		return ""
	}
	// the last cell of a page must not merge with the first cell of the next
	return text + tokenDelimiter
}
