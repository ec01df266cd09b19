package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"cardapio/internal/money"
)

// Amount is a monetary value that decodes from whatever shape older
// documents used: doubles, integers or pt-BR strings such as "10,50".
type Amount float64

// UnmarshalBSONValue accepts numeric and string BSON types so a single badly
// typed price does not fail a whole collection read. NaN and infinities
// decode as zero.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = 0
		return nil
	case bsontype.Double:
		v := raw.Double()
		if !money.Finite(v) {
			v = 0
		}
		*a = Amount(v)
		return nil
	case bsontype.Int32:
		*a = Amount(raw.Int32())
		return nil
	case bsontype.Int64:
		*a = Amount(raw.Int64())
		return nil
	case bsontype.Decimal128:
		*a = Amount(money.ParseFloat(raw.Decimal128().String()))
		return nil
	case bsontype.String:
		*a = Amount(money.ParseFloat(raw.StringValue()))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Amount", t)
	}
}

// Float returns the plain float64 value.
func (a Amount) Float() float64 {
	return float64(a)
}

// AmountPtr is a helper for optional price fields.
func AmountPtr(v float64) *Amount {
	a := Amount(v)
	return &a
}
