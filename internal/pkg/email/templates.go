package email

// BillingReceiptTemplate is sent to a partner after a successful
// settlement charge.
const BillingReceiptTemplate = `
<h2>Gouache advertising receipt</h2>
<p>Hi {{.PartnerName}},</p>
<p>We charged your card <strong>{{.AmountFormatted}}</strong> for ad spend
between {{.PeriodStart}} and {{.PeriodEnd}}.</p>
<table>
{{range .Campaigns}}<tr><td>{{.Name}}</td><td>{{.SpentFormatted}}</td></tr>
{{end}}</table>
<p>Reference: {{.PaymentReference}}</p>
`

// ChargeFailedTemplate is sent to a partner when a settlement charge is
// declined; the owed spend rolls into the next cycle.
const ChargeFailedTemplate = `
<h2>Gouache payment failed</h2>
<p>Hi {{.PartnerName}},</p>
<p>We could not charge your card {{.AmountFormatted}} for last period's ad
spend: {{.Reason}}.</p>
<p>Please update your payment method. We will retry on the next billing
cycle.</p>
`
