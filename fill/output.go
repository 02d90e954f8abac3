package fill

import (
	"strings"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/errors"
)

// ContractPlaceholder in an output path is replaced by the contract number.
const ContractPlaceholder = "{contract}"

var unsafePathChars = strings.NewReplacer("/", "_", `\`, "_", "..", "_", ":", "_")

// ExpandOutput returns the output path for contractNumber. "~" is expanded.
func ExpandOutput(pattern, contractNumber string) (string, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", errors.WithHint(
			errors.NewInvalidRequestError("output path cannot be empty"),
			"pass --output or set paths.output in am.toml",
		)
	}
	if strings.Contains(pattern, ContractPlaceholder) {
		c := unsafePathChars.Replace(strings.TrimSpace(contractNumber))
		pattern = strings.ReplaceAll(pattern, ContractPlaceholder, c)
	}
	return am.ExpandHome(pattern), nil
}
