package http

import (
	"net/http"

	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/jwtx"
	"github.com/ziberlive/colive/pkg/membersdk"
)

// JWKSHandler exposes the public keys access tokens are signed with.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	membersdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, membersdk.JWKSResponse(keys.PublicJWKS()))
	}
}
