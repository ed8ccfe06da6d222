// Package model defines the core data structures for envelope checks.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord is returned when a posting row lacks a required field.
var ErrMalformedRecord = errors.New("malformed posting record")

// Field names of an hledger CSV posting row.
const (
	FieldTxnIdx         = "txnidx"
	FieldDate           = "date"
	FieldDate2          = "date2"
	FieldStatus         = "status"
	FieldCode           = "code"
	FieldDescription    = "description"
	FieldComment        = "comment"
	FieldAccount        = "account"
	FieldAmount         = "amount"
	FieldCommodity      = "commodity"
	FieldCredit         = "credit"
	FieldDebit          = "debit"
	FieldPostingStatus  = "posting-status"
	FieldPostingComment = "posting-comment"
)

// ExpectedHeaders lists the columns `hledger print -O csv` emits, in order.
var ExpectedHeaders = []string{
	FieldTxnIdx, FieldDate, FieldDate2, FieldStatus, FieldCode,
	FieldDescription, FieldComment, FieldAccount, FieldAmount, FieldCommodity,
	FieldCredit, FieldDebit, FieldPostingStatus, FieldPostingComment,
}

// RequiredFields must be present in every row passed to NewPosting.
var RequiredFields = []string{
	FieldTxnIdx, FieldDate, FieldStatus, FieldDescription,
	FieldAccount, FieldAmount, FieldCommodity,
}

// Posting is one line item of a transaction as reported by hledger.
// Values are kept as opaque strings; consumers parse what they need.
type Posting struct {
	Raw            map[string]string
	TxnIdx         string
	Date           string
	Date2          string
	Status         string
	Code           string
	Description    string
	Comment        string
	Account        string
	Amount         string
	Commodity      string
	Credit         string
	Debit          string
	PostingStatus  string
	PostingComment string
}

// MalformedRecordError reports which required fields a row was missing.
type MalformedRecordError struct {
	Raw     map[string]string
	Missing []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: missing field(s) %s", ErrMalformedRecord, strings.Join(e.Missing, ", "))
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// NewPosting builds a Posting from a field-name to value mapping.
// Unknown fields are only retained in Raw.
func NewPosting(raw map[string]string) (Posting, error) {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}

	rawCopy := make(map[string]string, len(raw))
	for k, v := range raw {
		rawCopy[k] = v
	}

	if len(missing) > 0 {
		return Posting{}, &MalformedRecordError{Raw: rawCopy, Missing: missing}
	}

	return Posting{
		Raw:            rawCopy,
		TxnIdx:         raw[FieldTxnIdx],
		Date:           raw[FieldDate],
		Date2:          raw[FieldDate2],
		Status:         raw[FieldStatus],
		Code:           raw[FieldCode],
		Description:    raw[FieldDescription],
		Comment:        raw[FieldComment],
		Account:        raw[FieldAccount],
		Amount:         raw[FieldAmount],
		Commodity:      raw[FieldCommodity],
		Credit:         raw[FieldCredit],
		Debit:          raw[FieldDebit],
		PostingStatus:  raw[FieldPostingStatus],
		PostingComment: raw[FieldPostingComment],
	}, nil
}
