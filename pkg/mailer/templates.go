package mailer

import "strings"

const newsSummaryTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px 0;">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
        <tr><td style="background-color:#0f172a;padding:20px 32px;">
          <span style="color:#fbbf24;font-size:20px;font-weight:bold;">Signalist</span>
        </td></tr>
        <tr><td style="padding:32px;">
          <p style="color:#64748b;font-size:13px;margin:0 0 8px;">Market News Summary &middot; {{date}}</p>
          <div style="color:#1e293b;font-size:15px;line-height:1.6;white-space:pre-line;">{{newsContent}}</div>
        </td></tr>
        <tr><td style="padding:16px 32px;border-top:1px solid #e2e8f0;">
          <p style="color:#94a3b8;font-size:12px;margin:0;">You receive this email because you signed up for daily digests on Signalist.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

const welcomeTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px 0;">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
        <tr><td style="background-color:#0f172a;padding:20px 32px;">
          <span style="color:#fbbf24;font-size:20px;font-weight:bold;">Signalist</span>
        </td></tr>
        <tr><td style="padding:32px;">
          <h1 style="color:#1e293b;font-size:20px;margin:0 0 16px;">Welcome, {{name}}</h1>
          <p style="color:#1e293b;font-size:15px;line-height:1.6;margin:0;">{{intro}}</p>
        </td></tr>
        <tr><td style="padding:16px 32px;border-top:1px solid #e2e8f0;">
          <p style="color:#94a3b8;font-size:12px;margin:0;">Track your watchlist and get a personalized market digest every day.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

func RenderNewsSummary(date, newsContent string) string {
	html := strings.ReplaceAll(newsSummaryTemplate, "{{date}}", date)
	return strings.ReplaceAll(html, "{{newsContent}}", newsContent)
}

func RenderWelcome(name, intro string) string {
	html := strings.ReplaceAll(welcomeTemplate, "{{name}}", name)
	return strings.ReplaceAll(html, "{{intro}}", intro)
}
