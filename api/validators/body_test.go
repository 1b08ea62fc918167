package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string  `json:"nome" validate:"required"`
	CPF   string  `json:"cpf" validate:"required,cpf"`
	Role  string  `json:"funcao" validate:"omitempty,role"`
	Month string  `json:"mes" validate:"omitempty,month"`
	Items []int64 `json:"itens" validate:"omitempty,dive,gt=0"`
}

func decode(t *testing.T, body string) (sampleRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	return dest, err
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"nome":"Ana","cpf":"529.982.247-25","funcao":"Tecnico de Enfermagem","mes":"06","itens":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, []int64{1, 2}, got.Items)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	_, err := decode(t, `{"nome":"Ana","cpf":"52998224725","extra":true}`)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsEmptyBody(t *testing.T) {
	_, err := decode(t, ``)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyCustomTags(t *testing.T) {
	cases := map[string]string{
		"cpf":    `{"nome":"Ana","cpf":"11111111111"}`,
		"funcao": `{"nome":"Ana","cpf":"52998224725","funcao":"Zelador"}`,
		"mes":    `{"nome":"Ana","cpf":"52998224725","mes":"13"}`,
		"itens":  `{"nome":"Ana","cpf":"52998224725","itens":[0]}`,
	}
	for field, body := range cases {
		_, err := decode(t, body)
		require.Error(t, err, field)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, field)
		details, ok := typed.Details().(map[string]string)
		require.True(t, ok, field)
		assert.Contains(t, typed.Message(), strings.SplitN(field, "[", 2)[0], field)
		assert.NotEmpty(t, details, field)
	}
}

func TestDecodeJSONBodyMultipleErrorsUseGenericMessage(t *testing.T) {
	_, err := decode(t, `{}`)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, msgValidation, typed.Message())
	details := typed.Details().(map[string]string)
	assert.Equal(t, "campo obrigatório", details["nome"])
	assert.Equal(t, "campo obrigatório", details["cpf"])
}
