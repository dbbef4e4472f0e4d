package valueobject

import (
	"fmt"
	"strconv"
	"strings"
)

// IDFormat describes how a table renders its sequence numbers, e.g. "F" and
// width 3 gives F001, F002, ... Numbers wider than Width are not truncated.
type IDFormat struct {
	Prefix string
	Width  int
}

var (
	SupplierIDFormat = IDFormat{Prefix: "F", Width: 3}
	BuyerIDFormat    = IDFormat{Prefix: "A", Width: 3}
	OrderIDFormat    = IDFormat{Prefix: "C", Width: 4}
	AuditIDFormat    = IDFormat{Prefix: "H", Width: 4}
)

func (f IDFormat) Format(n int) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Parse returns the numeric suffix of id. ok is false when id does not carry
// the prefix or the suffix is not a positive run of decimal digits.
func (f IDFormat) Parse(id string) (n int, ok bool) {
	if !strings.HasPrefix(id, f.Prefix) {
		return 0, false
	}
	suffix := id[len(f.Prefix):]
	if suffix == "" || strings.TrimLeft(suffix, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
