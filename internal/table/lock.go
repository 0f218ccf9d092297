package table

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLock sinaliza que a trava do arquivo não pôde ser obtida.
var ErrLock = errors.New("table: trava indisponível")

// WithLock mantém trava exclusiva em "<path>.lock" durante fn, serializando o
// ciclo carregar → alterar → gravar entre processos. A trava é liberada em
// qualquer saída, inclusive panic.
func WithLock(path string, fn func() error) error {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLock, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("%w: %w", ErrLock, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}
