package control

import (
	"errors"

	"github.com/ermitavulpe/rdir/rerr"
)

// FromError folds any error out of the membership state machine or the
// share-name grammar into a wire-transmissible ServerErrorDto; callers
// outside this package never need to know which subsystem produced the
// error.
func FromError(err error) ServerErrorDto {
	var ioErr *rerr.IOError
	var cryptoErr *rerr.CryptoError

	switch {
	case errors.Is(err, rerr.ErrShareDoesntExist):
		return ServerErrorDto{Kind: ErrShareDoesntExist, Detail: err.Error()}
	case errors.Is(err, rerr.ErrRepeatedShare):
		return ServerErrorDto{Kind: ErrRepeatedShare, Detail: err.Error()}
	case errors.Is(err, rerr.ErrRepeatedPeer):
		return ServerErrorDto{Kind: ErrRepeatedPeer, Detail: err.Error()}
	case errors.Is(err, rerr.ErrRepeatedRemoteShare):
		return ServerErrorDto{Kind: ErrRepeatedRemoteShare, Detail: err.Error()}
	case errors.Is(err, rerr.ErrPeerNotUsingShare):
		return ServerErrorDto{Kind: ErrPeerNotUsingShare, Detail: err.Error()}
	case errors.Is(err, rerr.ErrNoSuchRemoteShare):
		return ServerErrorDto{Kind: ErrNoSuchRemoteShare, Detail: err.Error()}
	case errors.Is(err, rerr.ErrInvalidShareName):
		return ServerErrorDto{Kind: ErrInvalidShareName, Detail: err.Error()}
	case errors.Is(err, rerr.ErrProtocolError):
		return ServerErrorDto{Kind: ErrProtocolError, Detail: err.Error()}
	case errors.As(err, &ioErr):
		return ServerErrorDto{Kind: ErrIO, Detail: err.Error()}
	case errors.As(err, &cryptoErr):
		return ServerErrorDto{Kind: ErrCrypto, Detail: err.Error()}
	default:
		return ServerErrorDto{Kind: ErrIO, Detail: err.Error()}
	}
}
