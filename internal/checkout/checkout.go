// Package checkout renders priced quotes as WhatsApp order messages.
package checkout

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/shopspring/decimal"
)

// DefaultWhatsAppNumber is the order desk contact.
const DefaultWhatsAppNumber = "628123456789"

const (
	greetingBuild  = "Halo Mpok Sari, saya mau pesan menu custom:"
	greetingSimple = "Halo Mpok Sari, saya mau estimasi order:"
	closing        = "Apakah tanggal ini tersedia?"

	summaryMaxRunes = 60
)

// FormatRupiah renders d as whole Rupiah with dot thousands separators,
// e.g. "Rp 1.750.000".
func FormatRupiah(d decimal.Decimal) string {
	d = d.Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "Rp " + groupThousands(d.StringFixed(0))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// Summary renders the order block of a quote. Output depends only on res.
func Summary(res *pricing.Result) string {
	if res.Mode == pricing.ModeBuild {
		return buildSummary(res)
	}
	return simpleSummary(res)
}

func buildSummary(res *pricing.Result) string {
	var sb strings.Builder

	sb.WriteString("*ORDER CUSTOM MENU*\n")
	sb.WriteString("------------------\n")
	sb.WriteString(fmt.Sprintf("Pax: %d orang\n", res.Pax))
	sb.WriteString("Menu:\n")
	for _, line := range res.Lines {
		sb.WriteString(fmt.Sprintf("- %s x%d\n", line.Name, line.Quantity))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Harga dasar/pax: %s\n", FormatRupiah(res.PerPaxCost)))
	if res.HasDiscount() {
		sb.WriteString(fmt.Sprintf("Diskon: -%s (%s)\n", FormatRupiah(res.DiscountAmount), res.DiscountLabel))
	}
	sb.WriteString(fmt.Sprintf("*Total Akhir: %s*", FormatRupiah(res.FinalTotal)))

	return sb.String()
}

func simpleSummary(res *pricing.Result) string {
	var sb strings.Builder

	name := ""
	if len(res.Lines) > 0 {
		name = res.Lines[0].Name
	}
	sb.WriteString(fmt.Sprintf("Menu: %s\n", name))
	sb.WriteString(fmt.Sprintf("Jumlah: %d pax\n", res.Pax))
	if res.HasDiscount() {
		sb.WriteString(fmt.Sprintf("Subtotal: %s\n", FormatRupiah(res.RawTotal)))
		sb.WriteString(fmt.Sprintf("Diskon: -%s (%s)\n", FormatRupiah(res.DiscountAmount), res.DiscountLabel))
	}
	sb.WriteString(fmt.Sprintf("Estimasi Total: %s", FormatRupiah(res.FinalTotal)))

	return sb.String()
}

// Message wraps the summary with greeting and closing lines, ready to send.
func Message(res *pricing.Result) string {
	greeting := greetingSimple
	sep := "\n"
	if res.Mode == pricing.ModeBuild {
		greeting = greetingBuild
		sep = "\n\n"
	}
	return Sanitize(greeting + sep + Summary(res) + "\n\n" + closing)
}

// RepeatMessage asks the order desk to place a past order again.
func RepeatMessage(memberName, tier, itemsSummary string, total int64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Halo Mpok Sari, saya %s (Member %s).\n", memberName, tier))
	sb.WriteString("Saya mau Repeat Order:\n")
	sb.WriteString(fmt.Sprintf("\"%s\"\n", itemsSummary))
	sb.WriteString(fmt.Sprintf("Total: %s.\n\n", FormatRupiah(decimal.NewFromInt(total))))
	sb.WriteString("Mohon diproses segera.")
	return Sanitize(sb.String())
}

// Sanitize drops control characters other than newline and normalizes CRLF.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// WhatsAppLink builds a wa.me deep link that opens a chat with text
// pre-filled.
func WhatsAppLink(number, text string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "+")
	q := url.Values{"text": {Sanitize(text)}}
	return "https://wa.me/" + number + "?" + q.Encode()
}

// ItemsSummary is the one-line description stored on the order record.
func ItemsSummary(res *pricing.Result) string {
	if res.Mode != pricing.ModeBuild {
		if len(res.Lines) == 0 {
			return ""
		}
		return fmt.Sprintf("%s (%d pax)", res.Lines[0].Name, res.Pax)
	}

	parts := make([]string, len(res.Lines))
	for i, line := range res.Lines {
		parts[i] = fmt.Sprintf("%s (%dx)", line.Name, line.Quantity)
	}
	return fmt.Sprintf("Custom Menu (%s)", truncate(strings.Join(parts, ", "), summaryMaxRunes))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
