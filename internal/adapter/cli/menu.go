// Package cli provides the interactive console front-end. It is a pure
// consumer of the registry, transfer and history services and never
// touches storage directly.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"coin-ledger/internal/core/ports"
	"coin-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// Menu drives the numbered console loop.
type Menu struct {
	registry ports.RegistryService
	transfer ports.TransferService
	history  ports.HistoryService
	in       *bufio.Scanner
	out      io.Writer
}

// NewMenu creates a Menu reading from in and writing to out.
func NewMenu(registry ports.RegistryService, transfer ports.TransferService, history ports.HistoryService, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		registry: registry,
		transfer: transfer,
		history:  history,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run loops until the user quits or input is exhausted.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprint(m.out, `
Menu:
 1. Provision administrator
 2. Show administrator info
 3. Register merchant
 4. Register client
 5. Rent coins to a merchant
 6. Distribute coins to a client
 7. Return coins from a client
 8. Set administrator balance
 9. List merchants
10. List clients
11. Show transaction history
12. Show merchant stats
13. Quit
`)
		choice, ok := m.prompt("Choose an option (1-13): ")
		if !ok {
			return nil
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			err = m.provisionAdmin(ctx)
		case "2":
			err = m.showAdmin(ctx)
		case "3":
			err = m.registerMerchant(ctx)
		case "4":
			err = m.registerClient(ctx)
		case "5":
			err = m.rentCoins(ctx)
		case "6":
			err = m.distributeCoins(ctx)
		case "7":
			err = m.returnCoins(ctx)
		case "8":
			err = m.setAdminBalance(ctx)
		case "9":
			err = m.listMerchants(ctx)
		case "10":
			err = m.listClients(ctx)
		case "11":
			err = m.showHistory(ctx)
		case "12":
			err = m.showMerchantStats(ctx)
		case "13":
			fmt.Fprintln(m.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option, try again.")
			continue
		}

		if err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			m.printError(err)
		}
	}
}

var errInputClosed = errors.New("input closed")

func (m *Menu) provisionAdmin(ctx context.Context) error {
	username, err := m.mustPrompt("Administrator username: ")
	if err != nil {
		return err
	}
	credential, err := m.mustPrompt("Administrator credential: ")
	if err != nil {
		return err
	}

	admin, err := m.registry.ProvisionAdmin(ctx, username, credential)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Administrator %q provisioned with balance %d (id %s)\n",
		admin.Username, admin.Balance, admin.ID)
	return nil
}

func (m *Menu) showAdmin(ctx context.Context) error {
	username, err := m.mustPrompt("Administrator username: ")
	if err != nil {
		return err
	}
	credential, err := m.mustPrompt("Administrator credential: ")
	if err != nil {
		return err
	}

	admin, err := m.registry.GetAdmin(ctx, username, credential)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Administrator %q: id %s, balance %d\n",
		admin.Username, admin.ID, admin.Balance)
	return nil
}

func (m *Menu) registerMerchant(ctx context.Context) error {
	name, err := m.mustPrompt("Merchant name: ")
	if err != nil {
		return err
	}

	resp, err := m.registry.RegisterMerchant(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Merchant %q registered: merchant id %s, wallet id %s\n",
		name, resp.MerchantID, resp.WalletID)
	return nil
}

func (m *Menu) registerClient(ctx context.Context) error {
	name, err := m.mustPrompt("Client name: ")
	if err != nil {
		return err
	}
	merchantID, err := m.promptUUID("Merchant id: ")
	if err != nil {
		return err
	}

	client, err := m.registry.RegisterClient(ctx, name, merchantID)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Client %q registered under merchant %s (id %s)\n",
		client.Name, client.MerchantID, client.ID)
	return nil
}

func (m *Menu) rentCoins(ctx context.Context) error {
	username, err := m.mustPrompt("Administrator username: ")
	if err != nil {
		return err
	}
	merchantID, err := m.promptUUID("Merchant id: ")
	if err != nil {
		return err
	}
	amount, err := m.promptAmount("Amount to rent: ")
	if err != nil {
		return err
	}

	txn, err := m.transfer.RentCoins(ctx, username, merchantID, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Rented %d coins to merchant %s (tx %d)\n", txn.Amount, merchantID, txn.ID)
	return nil
}

func (m *Menu) distributeCoins(ctx context.Context) error {
	clientName, err := m.mustPrompt("Client name: ")
	if err != nil {
		return err
	}
	amount, err := m.promptAmount("Amount to distribute: ")
	if err != nil {
		return err
	}

	txn, err := m.transfer.DistributeToClient(ctx, clientName, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Distributed %d coins to client %q (tx %d)\n", txn.Amount, clientName, txn.ID)
	return nil
}

func (m *Menu) returnCoins(ctx context.Context) error {
	clientName, err := m.mustPrompt("Client name: ")
	if err != nil {
		return err
	}
	amount, err := m.promptAmount("Amount to return: ")
	if err != nil {
		return err
	}

	txn, err := m.transfer.ReturnFromClient(ctx, clientName, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Returned %d coins from client %q (tx %d)\n", txn.Amount, clientName, txn.ID)
	return nil
}

func (m *Menu) setAdminBalance(ctx context.Context) error {
	username, err := m.mustPrompt("Administrator username: ")
	if err != nil {
		return err
	}
	newBalance, err := m.promptInt64("New balance: ")
	if err != nil {
		return err
	}

	admin, err := m.transfer.SetAdminBalance(ctx, username, newBalance)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Administrator %q balance set to %d\n", admin.Username, admin.Balance)
	return nil
}

func (m *Menu) listMerchants(ctx context.Context) error {
	merchants, err := m.registry.ListMerchants(ctx)
	if err != nil {
		return err
	}
	if len(merchants) == 0 {
		fmt.Fprintln(m.out, "No merchants registered.")
		return nil
	}
	fmt.Fprintln(m.out, "Merchants:")
	for _, merchant := range merchants {
		fmt.Fprintf(m.out, "  %s  wallet %s  balance %d  %q\n",
			merchant.ID, merchant.WalletID, merchant.Balance, merchant.Name)
	}
	return nil
}

func (m *Menu) listClients(ctx context.Context) error {
	clients, err := m.registry.ListClients(ctx)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		fmt.Fprintln(m.out, "No clients registered.")
		return nil
	}
	fmt.Fprintln(m.out, "Clients:")
	for _, client := range clients {
		fmt.Fprintf(m.out, "  %s  merchant %s  balance %d  %q\n",
			client.ID, client.MerchantID, client.Balance, client.Name)
	}
	return nil
}

func (m *Menu) showHistory(ctx context.Context) error {
	txns, err := m.history.ListTransactions(ctx, ports.TransactionListParams{})
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(m.out, "No transactions recorded.")
		return nil
	}
	fmt.Fprintln(m.out, "Transactions:")
	for _, txn := range txns {
		fmt.Fprintf(m.out, "  #%d  %-10s  amount %d  at %s\n",
			txn.ID, txn.Kind, txn.Amount, txn.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (m *Menu) showMerchantStats(ctx context.Context) error {
	merchantID, err := m.promptUUID("Merchant id: ")
	if err != nil {
		return err
	}

	stats, err := m.history.MerchantStats(ctx, merchantID)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Merchant %s: %d transactions, rented %d, distributed %d, returned %d\n",
		merchantID, stats.TotalTransactions, stats.TotalRented, stats.TotalDistributed, stats.TotalReturned)
	return nil
}

// prompt reads one line; ok is false once input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) mustPrompt(label string) (string, error) {
	value, ok := m.prompt(label)
	if !ok {
		return "", errInputClosed
	}
	return value, nil
}

func (m *Menu) promptUUID(label string) (uuid.UUID, error) {
	raw, err := m.mustPrompt(label)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func (m *Menu) promptInt64(label string) (int64, error) {
	raw, err := m.mustPrompt(label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ErrInvalidAmount(fmt.Sprintf("invalid number %q", raw))
	}
	return value, nil
}

func (m *Menu) promptAmount(label string) (int64, error) {
	return m.promptInt64(label)
}

func (m *Menu) printError(err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(m.out, "Error [%s]: %s\n", appErr.Code, appErr.Message)
		return
	}
	fmt.Fprintf(m.out, "Error: %v\n", err)
}
