package constants

// InvoiceField is the canonical name of a field emitted by the prebuilt invoice model.
type InvoiceField string

const (
	AmountDue                  InvoiceField = "AmountDue"
	BillingAddress             InvoiceField = "BillingAddress"
	BillingAddressRecipient    InvoiceField = "BillingAddressRecipient"
	CustomerAddress            InvoiceField = "CustomerAddress"
	CustomerAddressRecipient   InvoiceField = "CustomerAddressRecipient"
	CustomerID                 InvoiceField = "CustomerId"
	CustomerName               InvoiceField = "CustomerName"
	DueDate                    InvoiceField = "DueDate"
	InvoiceDate                InvoiceField = "InvoiceDate"
	InvoiceID                  InvoiceField = "InvoiceId"
	InvoiceTotal               InvoiceField = "InvoiceTotal"
	PreviousUnpaidBalance      InvoiceField = "PreviousUnpaidBalance"
	PurchaseOrder              InvoiceField = "PurchaseOrder"
	RemittanceAddress          InvoiceField = "RemittanceAddress"
	RemittanceAddressRecipient InvoiceField = "RemittanceAddressRecipient"
	ServiceAddress             InvoiceField = "ServiceAddress"
	ServiceAddressRecipient    InvoiceField = "ServiceAddressRecipient"
	ShippingAddress            InvoiceField = "ShippingAddress"
	ShippingAddressRecipient   InvoiceField = "ShippingAddressRecipient"
	SubTotal                   InvoiceField = "SubTotal"
	TotalTax                   InvoiceField = "TotalTax"
	VendorAddress              InvoiceField = "VendorAddress"
	VendorAddressRecipient     InvoiceField = "VendorAddressRecipient"
	VendorName                 InvoiceField = "VendorName"
)

// InvoiceFields is the extraction allow-list, in output order.
// It tracks the prebuilt-invoice schema and must be edited by hand when that schema changes.
var InvoiceFields = []InvoiceField{
	AmountDue,
	BillingAddress,
	BillingAddressRecipient,
	CustomerAddress,
	CustomerAddressRecipient,
	CustomerID,
	CustomerName,
	DueDate,
	InvoiceDate,
	InvoiceID,
	InvoiceTotal,
	PreviousUnpaidBalance,
	PurchaseOrder,
	RemittanceAddress,
	RemittanceAddressRecipient,
	ServiceAddress,
	ServiceAddressRecipient,
	ShippingAddress,
	ShippingAddressRecipient,
	SubTotal,
	TotalTax,
	VendorAddress,
	VendorAddressRecipient,
	VendorName,
}

// DocumentNumberKey is the record key holding the 1-based document position.
const DocumentNumberKey = "DocumentNumber"

// FieldNames returns the allow-list as plain strings.
func FieldNames() []string {
	result := make([]string, len(InvoiceFields))
	for i, f := range InvoiceFields {
		result[i] = string(f)
	}
	return result
}
