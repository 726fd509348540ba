package quote

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reason classifies a rejected token.
type Reason int

const (
	InvalidTokenFormat Reason = iota + 1
	UnknownProductCode
	InvalidQuantityToken
)

func (r Reason) String() string {
	switch r {
	case InvalidTokenFormat:
		return "invalid_token_format"
	case UnknownProductCode:
		return "unknown_product_code"
	case InvalidQuantityToken:
		return "invalid_quantity_token"
	}
	return "unknown"
}

// LineItem is one product code with a positive quantity.
type LineItem struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// InvalidEntry is a token (or code plus bad quantity) the parser rejected.
type InvalidEntry struct {
	Token  string `json:"token"`
	Reason Reason `json:"reason"`
	// Quantity holds the offending quantity token for InvalidQuantityToken.
	Quantity string `json:"quantity,omitempty"`
}

// String renders the entry the way it is listed back to the client.
func (e InvalidEntry) String() string {
	switch e.Reason {
	case UnknownProductCode:
		return fmt.Sprintf("%q (código de producto no válido)", e.Token)
	case InvalidQuantityToken:
		return fmt.Sprintf("%q (cantidad inválida: %q)", e.Token, e.Quantity)
	default:
		return fmt.Sprintf("%q (no es un código válido)", e.Token)
	}
}

// ParseResult is what Parse returns. Consumed counts the input tokens
// taken by some transition and always equals the number of tokens.
type ParseResult struct {
	Items    []LineItem
	Invalid  []InvalidEntry
	Consumed int
}

// Normalize joins the arguments and splits them on commas and whitespace.
func Normalize(args []string) []string {
	joined := strings.ReplaceAll(strings.Join(args, " "), ",", " ")
	return strings.Fields(joined)
}

type parserState int

const (
	awaitingCode parserState = iota
	haveCodeAwaitingQuantity
)

// Parse scans args left to right. known reports whether a code exists in
// the catalog. It never fails.
func Parse(args []string, maxQuantity int, known func(code string) bool) ParseResult {
	tokens := Normalize(args)
	res := ParseResult{Items: []LineItem{}, Invalid: []InvalidEntry{}}

	state := awaitingCode
	var code string

	for i := 0; i < len(tokens); {
		tok := tokens[i]

		switch state {
		case awaitingCode:
			if _, ok := leadingInt(tok); !ok {
				res.Invalid = append(res.Invalid, InvalidEntry{Token: tok, Reason: InvalidTokenFormat})
			} else if !known(tok) {
				res.Invalid = append(res.Invalid, InvalidEntry{Token: tok, Reason: UnknownProductCode})
			} else {
				code = tok
				state = haveCodeAwaitingQuantity
			}
			i++
			res.Consumed++

		case haveCodeAwaitingQuantity:
			qty, ok := leadingInt(tok)
			switch {
			case ok && qty > int64(maxQuantity):
				// Too large for a quantity: it is the next code. Not consumed here.
				res.Items = append(res.Items, LineItem{Code: code, Quantity: 1})
			case ok && qty > 0:
				res.Items = append(res.Items, LineItem{Code: code, Quantity: int(qty)})
				i++
				res.Consumed++
			default:
				res.Invalid = append(res.Invalid, InvalidEntry{Token: code, Reason: InvalidQuantityToken, Quantity: tok})
				i++
				res.Consumed++
			}
			state = awaitingCode
		}
	}

	if state == haveCodeAwaitingQuantity {
		res.Items = append(res.Items, LineItem{Code: code, Quantity: 1})
	}
	return res
}

// leadingInt parses an optional sign followed by at least one digit at the
// start of s and ignores the rest ("12abc" is 12). Values that overflow
// saturate.
func leadingInt(s string) (int64, bool) {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}

	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		n = math.MaxInt64
	}
	if neg {
		n = -n
	}
	return n, true
}
