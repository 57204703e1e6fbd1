package deposit

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// Constantes do destinatário UPI
const (
	upiPayee     = "8728872927@fam"
	upiPayeeName = "FreeFireTournament"
	upiNote      = "FFArena Wallet Deposit"
	upiCurrency  = "INR"
)

// BuildUPILink monta o deep link de pagamento:
// upi://pay?pa=<id>&pn=<nome>&am=<2 casas>&cu=INR&tn=<nota>
// A invocação é fire-and-forget; o sistema não recebe callback e depende
// do UTR digitado pelo usuário para reconciliar.
func BuildUPILink(amount decimal.Decimal) string {
	q := url.Values{}
	q.Set("pa", upiPayee)
	q.Set("pn", upiPayeeName)
	q.Set("am", amount.StringFixed(2))
	q.Set("cu", upiCurrency)
	q.Set("tn", upiNote)
	return "upi://pay?" + q.Encode()
}
