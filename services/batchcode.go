package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"

	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"
)

const codeSuffixLen = 6

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func init() {
	rand.Seed(uint64(time.Now().UnixNano()))
}

// GenerateBatchCode builds a human traceable code:
// three product letters, a coarse (per-minute) base36 timestamp and a random
// base36 suffix, all uppercased. Uniqueness is probabilistic here; the unique
// index on batches.batch_code is the real authority and callers retry on
// collision.
func GenerateBatchCode(productName string, t time.Time) string {
	prefix := codePrefix(productName)
	stamp := strings.ToUpper(strconv.FormatInt(t.Unix()/60, 36))

	suffix := make([]byte, codeSuffixLen)
	for i := range suffix {
		suffix[i] = base36Chars[rand.Intn(len(base36Chars))]
	}

	return prefix + "-" + stamp + "-" + string(suffix)
}

// codePrefix takes the first three letters of the product name, uppercased,
// padded with X when the name is too short.
func codePrefix(productName string) string {
	letters := make([]rune, 0, 3)
	for _, r := range productName {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// TracePayload is the QR payload embedded with each batch. The batch code
// alone resolves back to the full record.
type TracePayload struct {
	BatchCode                string            `json:"batch_code"`
	ProductName              string            `json:"product_name"`
	FormulationVersionNumber int               `json:"formulation_version_number"`
	FormulationVersionID     types.SnowflakeID `json:"formulation_version_id"`
	BatchSize                decimal.Decimal   `json:"batch_size"`
	Unit                     string            `json:"unit"`
	StartTime                time.Time         `json:"start_time"`
}

func (p TracePayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeTracePayload(raw string) (TracePayload, error) {
	var p TracePayload
	err := json.Unmarshal([]byte(raw), &p)
	return p, err
}
