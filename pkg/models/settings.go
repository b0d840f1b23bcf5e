package models

// CenterSettings holds the center's identity and the bank account families
// transfer tuition to.
type CenterSettings struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`

	BankName          string `json:"bankName,omitempty"`
	BankBin           string `json:"bankBin,omitempty"`           // NAPAS bank identifier, e.g. 970436
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	BankAccountHolder string `json:"bankAccountHolder,omitempty"`
}

// HasTransferAccount reports whether the bank fields required for a transfer
// QR code are configured.
func (s CenterSettings) HasTransferAccount() bool {
	return s.BankBin != "" && s.BankAccountNumber != ""
}
