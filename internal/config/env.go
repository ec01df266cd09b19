package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cardapio/internal/models"
)

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func getEnvOrDefault(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(v *viper.Viper, key string, defaultValue int) int {
	if strings.TrimSpace(v.GetString(key)) == "" {
		return defaultValue
	}
	return v.GetInt(key)
}

func getDurationEnv(v *viper.Viper, key string, defaultValue int, unit time.Duration) time.Duration {
	if parsed := getIntEnv(v, key, 0); parsed > 0 {
		return time.Duration(parsed) * unit
	}
	return time.Duration(defaultValue) * unit
}

// LoadCoupons reads the coupon table from a yaml or json file:
//
//	coupons:
//	  - code: PROMO10
//	    type: percent
//	    value: 10
//	    label: 10% OFF
func LoadCoupons(path string) ([]models.Coupon, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read coupons file: %w", err)
	}

	var coupons []models.Coupon
	if err := v.UnmarshalKey("coupons", &coupons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coupons: %w", err)
	}

	for i := range coupons {
		coupons[i].Code = strings.ToUpper(strings.TrimSpace(coupons[i].Code))
		coupons[i].Type = strings.ToLower(strings.TrimSpace(coupons[i].Type))
		switch coupons[i].Type {
		case "percent", "value":
		default:
			return nil, fmt.Errorf("coupon %s: unknown type %q", coupons[i].Code, coupons[i].Type)
		}
	}
	return coupons, nil
}
