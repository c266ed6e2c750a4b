package domain

import "github.com/google/uuid"

// Storage keys are the entity class plus its unique business key.
const (
	cardKeyPrefix    = "card:"
	accountKeyPrefix = "account:"
	walletKeyPrefix  = "wallet:"

	// CardIndexKey names the bucket listing every persisted card number.
	// The bucket is capped at MaxCards entries.
	CardIndexKey = "card:index"
)

// CardKey builds the storage key for a card snapshot.
func CardKey(cardNumber string) string {
	return cardKeyPrefix + cardNumber
}

// AccountKey builds the storage key for a bank account snapshot.
func AccountKey(sortCode, accountNumber string) string {
	return accountKeyPrefix + sortCode + accountNumber
}

// WalletKey builds the storage key for a wallet snapshot.
func WalletKey(id uuid.UUID) string {
	return walletKeyPrefix + id.String()
}
