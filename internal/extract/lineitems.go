package extract

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
)

// tokenDelimiter separates cells in the flattened PDF text layer
const tokenDelimiter = "  "

// maxQuantityLen is the longest token still considered a quantity cell
const maxQuantityLen = 4

var (
	itemCodePattern = regexp.MustCompile(`^[A-Z]\.[A-Z]-[0-9A-Z]+$`)
	quantityPattern = regexp.MustCompile(`\b\d{1,4}\b`)
)

// TokenKind classifies one trimmed token
type TokenKind int

const (
	TokenNoise TokenKind = iota
	TokenItemCode
	TokenQuantity
)

// Classify returns the kind of a trimmed token
func Classify(token string) TokenKind {
	if itemCodePattern.MatchString(token) {
		return TokenItemCode
	}
	if len(token) <= maxQuantityLen && !strings.Contains(token, ".") && quantityPattern.MatchString(token) {
		return TokenQuantity
	}
	return TokenNoise
}

// Result holds the aligned pairs and any anomalies met while pairing
type Result struct {
	Pairs     []domain.LineItemPair
	Anomalies []domain.ExtractionAnomaly
}

// Codes returns the code column; nil entries are placeholders
func (r *Result) Codes() []*string {
	codes := make([]*string, len(r.Pairs))
	for i, p := range r.Pairs {
		codes[i] = p.Code
	}
	return codes
}

// Quantities returns the quantity column; nil entries are missing quantities
func (r *Result) Quantities() []*int {
	qtys := make([]*int, len(r.Pairs))
	for i, p := range r.Pairs {
		qtys[i] = p.Quantity
	}
	return qtys
}

// Extractor turns flattened purchase-order text into (code, quantity) pairs
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a line-item extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract makes a single pass over the two-space separated tokens of text.
// An item code opens a pair; the next quantity closes it. A quantity with no open
// pair gets a nil-code placeholder and is kept. A code that never receives a
// quantity is closed with a nil quantity.
func (e *Extractor) Extract(text string) *Result {
	res := &Result{}
	expectingQuantity := false
	var lastCode *string

	for _, raw := range strings.Split(text, tokenDelimiter) {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}

		switch Classify(token) {
		case TokenItemCode:
			if expectingQuantity {
				res.closeWithoutQuantity(e.logger)
			}
			code := token
			res.Pairs = append(res.Pairs, domain.LineItemPair{Code: &code})
			lastCode = &code
			expectingQuantity = true

		case TokenQuantity:
			qty := parseQuantity(token)
			if expectingQuantity {
				res.Pairs[len(res.Pairs)-1].Quantity = &qty
				expectingQuantity = false
				continue
			}
			anomaly := domain.ExtractionAnomaly{
				Kind:      domain.AnomalyQuantityWithoutCode,
				Position:  len(res.Pairs),
				Token:     token,
				PriorCode: lastCode,
			}
			res.Anomalies = append(res.Anomalies, anomaly)
			res.Pairs = append(res.Pairs, domain.LineItemPair{Quantity: &qty})
			fields := []zap.Field{zap.String("token", token), zap.Int("position", anomaly.Position)}
			if lastCode != nil {
				fields = append(fields, zap.String("ambiguous_prior_code", *lastCode))
			}
			e.logger.Warn("Item code not found for quantity", fields...)
		}
	}

	if expectingQuantity {
		res.closeWithoutQuantity(e.logger)
	}
	return res
}

// closeWithoutQuantity flags the last pair, which is still waiting for a quantity
func (r *Result) closeWithoutQuantity(logger *zap.Logger) {
	pos := len(r.Pairs) - 1
	code := r.Pairs[pos].Code
	r.Anomalies = append(r.Anomalies, domain.ExtractionAnomaly{
		Kind:     domain.AnomalyCodeWithoutQuantity,
		Position: pos,
		Token:    *code,
	})
	logger.Warn("Quantity not found for item code", zap.String("code", *code), zap.Int("position", pos))
}

func parseQuantity(token string) int {
	n, _ := strconv.Atoi(quantityPattern.FindString(token))
	return n
}
