package mailer

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

const resetSubject = "Recuperação de Senha - Sistema Dona Zulmira"

const resetHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .container { background-color: #f4f4f4; border-radius: 10px; padding: 30px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; margin: -30px -30px 20px -30px; }
    .content { background-color: white; padding: 20px; border-radius: 5px; }
    .button { display: inline-block; padding: 12px 30px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; font-weight: bold; }
    .link { word-break: break-all; background-color: #f0f0f0; padding: 10px; border-radius: 5px; font-size: 12px; }
    .warning { background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 10px; margin: 15px 0; }
    .footer { margin-top: 20px; font-size: 12px; color: #666; text-align: center; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>Recuperação de Senha</h1></div>
    <div class="content">
      <p>Olá, <strong>{{ .Name | trim | default "usuário" }}</strong>!</p>
      <p>Recebemos uma solicitação para redefinir a senha da sua conta no <strong>Sistema Dona Zulmira</strong>.</p>
      <p>Para criar uma nova senha, clique no botão abaixo:</p>
      <div style="text-align: center;"><a href="{{ .ResetURL }}" class="button">Redefinir Senha</a></div>
      <p>Ou copie e cole o seguinte link no seu navegador:</p>
      <p class="link">{{ .ResetURL }}</p>
      <div class="warning"><strong>Atenção:</strong> Este link é válido por apenas <strong>{{ .ValidFor }}</strong>. Após esse período, você precisará solicitar uma nova recuperação.</div>
      <p><strong>Não foi você?</strong> Se você não solicitou a redefinição de senha, ignore este e-mail. Sua senha permanecerá inalterada.</p>
    </div>
    <div class="footer">
      <p>Este é um e-mail automático. Por favor, não responda.</p>
      <p>&copy; {{ now | date "2006" }} Sistema Dona Zulmira - Todos os direitos reservados</p>
    </div>
  </div>
</body>
</html>`

const resetText = `Olá, {{ .Name | trim | default "usuário" }}!

Recebemos uma solicitação para redefinir a senha da sua conta no Sistema Dona Zulmira.

Para criar uma nova senha, acesse o seguinte link:
{{ .ResetURL }}

ATENÇÃO: Este link é válido por apenas {{ .ValidFor }}.

Se você não solicitou a redefinição de senha, ignore este e-mail.

---
Sistema Dona Zulmira
`

var (
	resetHTMLTmpl = htmltemplate.Must(htmltemplate.New("reset_html").Funcs(sprig.FuncMap()).Parse(resetHTML))
	resetTextTmpl = texttemplate.Must(texttemplate.New("reset_text").Funcs(sprig.TxtFuncMap()).Parse(resetText))
)

type resetView struct {
	Name     string
	ResetURL string
	ValidFor string
}

func renderReset(view resetView) (string, string, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := resetHTMLTmpl.Execute(&htmlBuf, view); err != nil {
		return "", "", err
	}
	if err := resetTextTmpl.Execute(&textBuf, view); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}
