package zerodha

import (
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// NewZerodha builds a gateway backed by the Kite Connect REST API.
func NewZerodha(p Params) *Zerodha {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	if p.BaseURI != "" {
		kc.SetBaseURI(p.BaseURI)
	}
	return newZerodha(p, kc)
}
