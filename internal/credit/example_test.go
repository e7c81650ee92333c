package credit_test

import (
	"errors"
	"fmt"

	"github.com/mmynk/creditledger/internal/credit"
)

func ExampleMember_AcceptTx() {
	group := credit.NewGroup("123", "grupo")

	alice := credit.NewMember("A", "Alice", "123")
	bob := credit.NewMember("B", "Bob", "123")
	alice.SetBalance(0)
	bob.SetBalance(0)

	tx, err := alice.RequestReceiveCredit(group, bob, 10)
	if err != nil {
		panic(err)
	}
	fmt.Println(tx.Status, tx.From, "->", tx.To)

	_, err = alice.AcceptTx(group, tx, bob)
	fmt.Println(errors.Is(err, credit.ErrCantAcceptTx))

	if _, err := bob.AcceptTx(group, tx, alice); err != nil {
		panic(err)
	}
	fmt.Println(tx.Status)

	// Output:
	// requested B -> A
	// true
	// accepted
}

func ExampleValidateTransfer() {
	group := credit.NewGroup("123", "grupo")

	alice := credit.NewMember("A", "Alice", "123")
	bob := credit.NewMember("B", "Bob", "123")
	alice.SetBalance(0)
	bob.SetBalance(-80)

	err := credit.ValidateTransfer(group, alice, bob, 30)

	var limitErr *credit.LimitError
	if errors.As(err, &limitErr) {
		fmt.Println(limitErr.Kind, limitErr.Limit, limitErr.Value)
	}

	// Output:
	// debt -100 -110
}
