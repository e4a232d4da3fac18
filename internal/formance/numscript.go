package formance

import (
	"fmt"
	"strconv"
	"strings"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"
)

// transitAccount nets debits against credits within one posting. Every
// operation credits exactly what it debits per asset, so it ends at zero.
const transitAccount = "platform:transit"

const (
	legDebit  = "debit"
	legCredit = "credit"
	legMint   = "mint"
	legBurn   = "burn"
)

// leg is one buffered ledger movement.
type leg struct {
	kind    string
	account store.Account
	asset   string
	amount  uint64
}

// buildScript renders legs as a single Numscript program, in order, plus its
// vars. Operation data is attached with set_tx_meta() so the transaction is
// self-describing.
func buildScript(reference string, op *models.Operation, legs []leg) (string, map[string]string) {
	var decl, body strings.Builder
	vars := make(map[string]string, 3*len(legs)+4)

	decl.WriteString("vars {\n")
	for i, l := range legs {
		asset := fmt.Sprintf("asset_%d", i)
		amount := fmt.Sprintf("amount_%d", i)
		account := fmt.Sprintf("account_%d", i)
		fmt.Fprintf(&decl, "  asset $%s\n  number $%s\n  account $%s\n", asset, amount, account)
		vars[asset] = formanceAsset(l.asset)
		vars[amount] = strconv.FormatUint(l.amount, 10)
		vars[account] = string(l.account)

		var source, destination string
		switch l.kind {
		case legMint:
			source, destination = "@world", "$"+account
		case legBurn:
			source, destination = "$"+account, "@world"
		case legDebit:
			source, destination = "$"+account, "@"+transitAccount
		default:
			source, destination = "@"+transitAccount+" allowing unbounded overdraft", "$"+account
		}
		fmt.Fprintf(&body, "send [$%s $%s] (\n  source = %s\n  destination = %s\n)\n\n", asset, amount, source, destination)
	}

	meta := [][2]string{{"reference", reference}}
	if op != nil {
		meta = append(meta,
			[2]string{"operation_kind", op.Kind},
			[2]string{"entity_id", op.EntityId},
			[2]string{"actor", op.Actor})
	}
	for _, m := range meta {
		if m[1] == "" {
			continue
		}
		fmt.Fprintf(&decl, "  string $%s\n", m[0])
		fmt.Fprintf(&body, "set_tx_meta(%q, $%s)\n", m[0], m[0])
		vars[m[0]] = m[1]
	}
	decl.WriteString("}\n\n")

	return decl.String() + body.String(), vars
}
