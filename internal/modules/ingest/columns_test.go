package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns(t *testing.T) {
	t.Run("portuguese headers", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Data", "Tipo", "Valor", "Contraparte", "CPF/CNPJ", "Histórico"})
		require.NoError(t, err)

		assert.Equal(t, 0, cm[FieldDate])
		assert.Equal(t, 1, cm[FieldType])
		assert.Equal(t, 2, cm[FieldAmount])
		assert.Equal(t, 3, cm[FieldCounterparty])
		assert.Equal(t, 4, cm[FieldCounterpartyDocument])
		assert.Equal(t, 5, cm[FieldDescription])
	})

	t.Run("english headers", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Date", "Type", "Amount", "Counterparty"})
		require.NoError(t, err)
		assert.Equal(t, 0, cm[FieldDate])
		assert.Equal(t, 3, cm[FieldCounterparty])
	})

	t.Run("accented and decorated headers", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Data do Lançamento", "Natureza da Operação", "Valor (R$)"})
		require.NoError(t, err)
		assert.Equal(t, 0, cm[FieldDate])
		assert.Equal(t, 1, cm[FieldType])
		assert.Equal(t, 2, cm[FieldAmount])
	})

	t.Run("holder document claimed before generic document", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Data", "Tipo", "Valor", "Documento Titular", "Documento"})
		require.NoError(t, err)
		assert.Equal(t, 3, cm[FieldHolderDocument])
		assert.Equal(t, 4, cm[FieldCounterpartyDocument])
	})

	t.Run("missing date is fatal", func(t *testing.T) {
		_, err := ResolveColumns([]string{"Nome", "Valor", "Tipo"})
		require.Error(t, err)
		assert.True(t, IsMissingColumn(err))
	})

	t.Run("missing amount is fatal", func(t *testing.T) {
		_, err := ResolveColumns([]string{"Data", "Tipo", "Nome"})
		require.Error(t, err)
		assert.True(t, IsMissingColumn(err))
	})

	t.Run("optional fields simply absent", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Data", "Tipo", "Valor"})
		require.NoError(t, err)
		assert.False(t, cm.Has(FieldBank))
		assert.False(t, cm.Has(FieldCurrency))
	})
}
