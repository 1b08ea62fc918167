package ai

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	"github.com/donazulmira/moradores-backend/pkg/textutil"
)

const maxEntryRunes = 400

const promptText = `Você é um profissional de saúde registrando um relatório diário geral institucional.

Dados do dia: {{ .Date }}
Modo desejado: {{ .Mode }}

Evoluções individuais selecionadas (cada item possui horário e morador):
{{ .Entries | join "\n" }}

Instruções:
- Produza um texto coeso consolidando apenas as informações listadas.
- Agrupe por temas (alimentação, sintomas, medicação, comportamento, intercorrências).
- Tom: objetivo, clínico, português do Brasil.
- Não invente dados não listados.
- Se não houver intercorrências relevantes, expresse isso de forma adequada.
- Responda somente com o texto final, sem título ou explicações.
`

var promptTmpl = template.Must(template.New("report_prompt").Funcs(sprig.TxtFuncMap()).Parse(promptText))

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	answerPrefix = regexp.MustCompile(`(?i)^resposta:?`)
)

type promptEntry struct {
	At       time.Time
	Resident string
	Notes    string
}

type promptView struct {
	Date    string
	Mode    string
	Entries []string
}

func formatEntry(e promptEntry, loc *time.Location) string {
	resident := strings.TrimSpace(e.Resident)
	if resident == "" {
		resident = "Morador não identificado"
	}
	notes := textutil.Ellipsize(textutil.CollapseSpaces(e.Notes), maxEntryRunes)
	return "[" + e.At.In(loc).Format("15:04") + "] Morador: " + resident + " — " + notes
}

func modeDescription(mode enums.ReportMode) string {
	if mode == enums.ReportModeDetalhado {
		return "mais detalhado (até ~1500 caracteres)"
	}
	return "resumo (~800-1200 caracteres)"
}

// reportDate renders YYYY-MM-DD as DD/MM/YYYY; other input is shown as is.
func reportDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Não informada"
	}
	if !isoDate.MatchString(raw) {
		return raw
	}
	return raw[8:10] + "/" + raw[5:7] + "/" + raw[0:4]
}

func buildPrompt(entries []promptEntry, mode enums.ReportMode, date string, loc *time.Location) (string, error) {
	view := promptView{Date: reportDate(date), Mode: modeDescription(mode)}
	for _, e := range entries {
		view.Entries = append(view.Entries, formatEntry(e, loc))
	}
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleanAnswer strips markdown emphasis and a leading "Resposta:" label.
func cleanAnswer(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.ReplaceAll(t, "*", "")
	t = answerPrefix.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
