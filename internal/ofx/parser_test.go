package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dompetku/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

`

const signon = `<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

const sampleBankOFX = ofxHeader + `<OFX>
` + signon + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>IDR
<BANKACCTFROM>
<BANKID>014
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>5000000.00
<FITID>2024012501
<NAME>GAJI JANUARI
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240128120000[0:GMT]
<TRNAMT>-35000.00
<FITID>2024012801
<NAME>POS PURCHASE WARTEG BAHARI
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240129120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012901
<NAME>CARD CHECK
</STMTTRN>
<STMTTRN>
<TRNTYPE>ATM
<DTPOSTED>20240130120000[0:GMT]
<TRNAMT>-200000.00
<FITID>2024013001
<NAME>DEBIT
<MEMO>TARIK TUNAI ATM SUDIRMAN
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4765000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = ofxHeader + `<OFX>
` + signon + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>IDR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-459900.00
<FITID>CC2024011001
<NAME>TOKOPEDIA*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-54000.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-513900.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{"bank statement", sampleBankOFX, 3, false},
		{"credit card statement", sampleCreditCardOFX, 2, false},
		{"leading blank lines", "\n\n  " + sampleCreditCardOFX, 2, false},
		{"invalid OFX data", "not valid OFX", 0, true},
		{"empty OFX", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, err := NewParser("").Parse(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, inputs, tt.expectedCount)
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	inputs, err := NewParser("").Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, inputs, 3)

	assert.Equal(t, model.CreateTransactionInput{
		Name:     "GAJI JANUARI",
		Amount:   5000000,
		Type:     model.TransactionTypeIncome,
		Category: model.DefaultCategoryName,
		Date:     "2024-01-25",
		Note:     "FITID 2024012501",
	}, inputs[0])

	assert.Equal(t, "WARTEG BAHARI", inputs[1].Name)
	assert.Equal(t, 35000.0, inputs[1].Amount)
	assert.Equal(t, model.TransactionTypeExpense, inputs[1].Type)
	assert.Equal(t, "2024-01-28", inputs[1].Date)

	// A generic NAME falls back to the memo.
	assert.Equal(t, "TARIK TUNAI ATM SUDIRMAN", inputs[2].Name)
	assert.Equal(t, 200000.0, inputs[2].Amount)
}

func TestParseCreditCardStatement(t *testing.T) {
	inputs, err := NewParser("Belanja").Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "TOKOPEDIA*RT4Y7HG2", inputs[0].Name)
	assert.Equal(t, 459900.0, inputs[0].Amount)
	assert.Equal(t, "Belanja", inputs[0].Category)
	assert.Equal(t, "FITID CC2024011501", inputs[1].Note)
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser("").Parse(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{"remove POS prefix", ofxgo.Transaction{Name: "POS PURCHASE INDOMARET"}, "INDOMARET"},
		{"remove DEBIT CARD prefix", ofxgo.Transaction{Name: "DEBIT CARD PURCHASE ALFAMART"}, "ALFAMART"},
		{"strip posting date", ofxgo.Transaction{Name: "01/28 GRAB FOOD"}, "GRAB FOOD"},
		{"keep clean name", ofxgo.Transaction{Name: "NETFLIX.COM"}, "NETFLIX.COM"},
		{"trim whitespace", ofxgo.Transaction{Name: "  SHOPEE  "}, "SHOPEE"},
		{"prefer payee", ofxgo.Transaction{Name: "PAYMENT", Payee: &ofxgo.Payee{Name: "PLN Prabayar"}}, "PLN Prabayar"},
		{"memo for generic name", ofxgo.Transaction{Name: "PAYMENT", Memo: "BPJS KESEHATAN"}, "BPJS KESEHATAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractName(tt.tx))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "né", truncate("néant", 2))
}
