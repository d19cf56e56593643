// internal/services/testing_test.go
package services

import (
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.CollectionRecord{},
		&models.Sequence{},
		&models.IPAsset{},
		&models.LicenseOffer{},
		&models.EscrowBalance{},
		&models.DepositAccount{},
		&models.Deposit{},
		&models.ChainEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Chain: config.ChainConfig{
			Network:        "testnet",
			SponsorAddress: "0x00000000000000000000000000000000000000aa",
			AdminAddress:   "0x00000000000000000000000000000000000000bb",
		},
	}
}

// fakeChain records collaborator calls and can be told to fail.
type fakeChain struct {
	mtx sync.Mutex

	collections    int
	tokens         []CreateTokenParams
	transfers      []transferCall
	sponsored      map[string]string
	admins         map[string][]string
	createTokenErr error
	transferErr    error
}

type transferCall struct {
	to     models.CrossAccount
	amount int64
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		sponsored: make(map[string]string),
		admins:    make(map[string][]string),
	}
}

func (f *fakeChain) CreateCollection(params CreateCollectionParams) (string, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.collections++
	return fmt.Sprintf("0x%040d", f.collections), nil
}

func (f *fakeChain) CreateToken(params CreateTokenParams) (uint64, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.createTokenErr != nil {
		return 0, f.createTokenErr
	}
	f.tokens = append(f.tokens, params)
	return uint64(len(f.tokens)), nil
}

func (f *fakeChain) SetCollectionSponsor(collection, sponsor string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.sponsored[collection] = sponsor
	return nil
}

func (f *fakeChain) ConfirmSponsorship(collection string) error {
	return nil
}

func (f *fakeChain) AddCollectionAdmin(collection string, admin models.CrossAccount) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.admins[collection] = append(f.admins[collection], admin.Address)
	return nil
}

func (f *fakeChain) ChangeCollectionOwner(collection string, owner models.CrossAccount) error {
	return nil
}

func (f *fakeChain) Transfer(to models.CrossAccount, amount int64) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.transferErr != nil {
		return f.transferErr
	}
	f.transfers = append(f.transfers, transferCall{to: to, amount: amount})
	return nil
}

func defaultPage() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "asc"}
}

func fundDeposit(t *testing.T, db *gorm.DB, address string, amount int64) {
	t.Helper()
	account := models.DepositAccount{Address: address, Balance: amount}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to fund deposit account: %v", err)
	}
}
