package pricing

import "errors"

// Messages shown to the cashier are kept in Portuguese, as on the original
// screens.
var (
	ErrSizeRequired      = errors.New("escolha um tamanho")
	ErrUnknownSize       = errors.New("tamanho inexistente")
	ErrLineNotFound      = errors.New("item não está no carrinho")
	ErrInvalidCoupon     = errors.New("Cupom inválido.")
	ErrEmptyCart         = errors.New("Carrinho vazio.")
	ErrPaymentRequired   = errors.New("Selecione a forma de pagamento.")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderFinalized    = errors.New("pedido finalizado não pode ser editado")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)
