package extract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildPDF writes a minimal uncompressed PDF with one page per content stream.
// Every page uses /F1, a standard Helvetica font.
func buildPDF(t *testing.T, contents ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, c := range contents {
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

func textOf(t *testing.T, data []byte) string {
	t.Helper()
	text, err := TextFromPDF(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return text
}

func TestTextFromPDF_SeparatesPositionedCells(t *testing.T) {
	data := buildPDF(t, "BT /F1 12 Tf 50 700 Td (A.B-123X) Tj 200 0 Td (45) Tj ET")

	text := textOf(t, data)
	assert.Equal(t, "A.B-123X  45  ", text)

	res := NewExtractor(zap.NewNop()).Extract(text)
	assert.Equal(t, []pair{{"A.B-123X", 45}}, flatten(res))
	assert.Empty(t, res.Anomalies)
}

func TestTextFromPDF_TableAcrossPages(t *testing.T) {
	data := buildPDF(t,
		"BT /F1 10 Tf 1 0 0 1 50 700 Tm (Item) Tj 1 0 0 1 200 700 Tm (Qty) Tj ET "+
			"BT 1 0 0 1 50 680 Tm [(A.B-)-20(111)] TJ 150 0 Td (12) Tj ET",
		"BT /F1 10 Tf 50 700 Td (A.B-222) Tj 150 0 Td (3) Tj T* (Thank you for your business) Tj ET",
	)

	text := textOf(t, data)
	assert.Equal(t, "Item  Qty  A.B-111  12  \nA.B-222  3  Thank you for your business  ", text)

	res := NewExtractor(zap.NewNop()).Extract(text)
	assert.Equal(t, []pair{{"A.B-111", 12}, {"A.B-222", 3}}, flatten(res))
}

func TestTextFromPDF_PageWithoutText(t *testing.T) {
	data := buildPDF(t, "0 0 m 100 100 l S", "BT /F1 12 Tf 50 700 Td (A.B-1) Tj 100 0 Td (2) Tj ET")

	text := textOf(t, data)
	assert.Equal(t, "\nA.B-1  2  ", text)
}
