package ledger

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTradeType    = errors.New("invalid trade type")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientXP      = errors.New("insufficient XP")
	ErrAccountNotFound     = errors.New("account not found")
)
