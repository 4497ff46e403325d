package present

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/librento/librento/billing"
)

// The view boundary serializes with jsoniter configured for standard-library
// compatible output.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeLoanRows serializes loan rows for the view layer.
func EncodeLoanRows(rows []LoanRow) ([]byte, error) {
	return json.Marshal(rows)
}

// EncodeBill serializes a settlement bill for the return confirmation view.
func EncodeBill(bill billing.Bill) ([]byte, error) {
	return json.Marshal(bill)
}
