package app

import (
	"fmt"
	"log/slog"

	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/jwtx"
)

// Keys bundles what token issuing and verification need.
type Keys struct {
	Signer   jwtx.Signer
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
}

// InitKeys loads the EdDSA signing key from cfg.SigningKeyPath, creating it on
// first start so tokens survive restarts. The key id is the fingerprint of
// the key file.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	pemKey, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	kid := cryptox.Fingerprint(pemKey)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return nil, fmt.Errorf("signing key failed self-check: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to publish signing key: %w", err)
	}

	logger.Info("signing key loaded",
		"algorithm", signer.Alg(),
		"kid", kid,
		"issuer", cfg.Issuer,
	)

	return &Keys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer, cfg.Audience),
	}, nil
}
