package main

import (
	"fmt"
	"os"

	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/util"
)

// hashpass gera o valor da coluna senha_hash de usuarios.csv.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	if err := util.ValidatePassword(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "senha fraca: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
