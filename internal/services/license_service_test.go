// internal/services/license_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
)

type LicenseServiceTestSuite struct {
	suite.Suite

	db       *gorm.DB
	chain    *fakeChain
	registry *RegistryService
	licenses *LicenseService

	owner models.CrossAccount
	buyer models.CrossAccount
	payee models.CrossAccount
}

func (s *LicenseServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.chain = newFakeChain()
	events := NewEventService(s.db)
	s.registry = NewRegistryService(s.db, s.chain, events, newTestConfig())
	s.licenses = NewLicenseService(s.db, events)

	s.owner = models.CrossAccount{Address: "0x1111111111111111111111111111111111111111"}
	s.buyer = models.CrossAccount{Address: "0x2222222222222222222222222222222222222222"}
	s.payee = models.CrossAccount{Address: "0x3333333333333333333333333333333333333333"}
}

// registerAsset sets up a collection owned by s.owner and registers one asset
// in it, returning the asset.
func (s *LicenseServiceTestSuite) registerAsset() *models.IPAsset {
	record, err := s.registry.CreateCollection(s.owner, &CreateCollectionRequest{
		Name:   "Trademark Shelf",
		Symbol: "TMS",
	})
	s.Require().NoError(err)

	asset, err := s.registry.RegisterAsset(s.owner, &RegisterAssetRequest{
		IPType:            models.IPTypeTrademark,
		Jurisdiction:      "EU",
		CollectionAddress: record.Address,
		Name:              "House mark",
	})
	s.Require().NoError(err)
	return asset
}

func (s *LicenseServiceTestSuite) offer(assetID uint64, price int64) *models.LicenseOffer {
	offer, err := s.licenses.OfferLicense(s.owner, &OfferLicenseRequest{
		AssetID:     assetID,
		RoyaltyRate: 5,
		Price:       price,
	})
	s.Require().NoError(err)
	return offer
}

func (s *LicenseServiceTestSuite) escrowBalance(address string) int64 {
	var entry models.EscrowBalance
	err := s.db.Where("address = ?", address).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	s.Require().NoError(err)
	return entry.Balance
}

func (s *LicenseServiceTestSuite) depositBalance(address string) int64 {
	var account models.DepositAccount
	err := s.db.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	s.Require().NoError(err)
	return account.Balance
}

func (s *LicenseServiceTestSuite) TestOfferLicenseAssignsSequentialIDs() {
	asset := s.registerAsset()

	first := s.offer(asset.AssetID, 100)
	second := s.offer(asset.AssetID, 250)

	s.Equal(uint64(1), first.LicenseID)
	s.Equal(uint64(2), second.LicenseID)
	s.False(first.Accepted)

	var stored models.LicenseOffer
	s.Require().NoError(s.db.Where("license_id = ?", first.LicenseID).First(&stored).Error)
	s.Equal(first.LicenseID, stored.LicenseID)
}

func (s *LicenseServiceTestSuite) TestCountersAreIndependent() {
	asset := s.registerAsset()
	s.Equal(uint64(1), asset.AssetID)

	offer := s.offer(asset.AssetID, 100)
	s.Equal(uint64(1), offer.LicenseID)

	// A second asset does not disturb the license counter and vice versa.
	second, err := s.registry.RegisterAsset(s.owner, &RegisterAssetRequest{
		IPType:            models.IPTypeCopyright,
		Jurisdiction:      "EU",
		CollectionAddress: asset.CollectionAddress,
		Name:              "Score sheet",
	})
	s.Require().NoError(err)
	s.Equal(uint64(2), second.AssetID)

	offer = s.offer(second.AssetID, 50)
	s.Equal(uint64(2), offer.LicenseID)
}

func (s *LicenseServiceTestSuite) TestOfferLicenseDefaultsPayeeToCaller() {
	asset := s.registerAsset()

	offer := s.offer(asset.AssetID, 100)
	s.True(offer.Payee.Equal(s.owner))
}

func (s *LicenseServiceTestSuite) TestOfferLicenseExplicitPayee() {
	asset := s.registerAsset()

	offer, err := s.licenses.OfferLicense(s.owner, &OfferLicenseRequest{
		AssetID: asset.AssetID,
		Price:   100,
		Payee:   s.payee,
	})
	s.Require().NoError(err)
	s.True(offer.Payee.Equal(s.payee))
}

func (s *LicenseServiceTestSuite) TestOfferLicenseNonOwnerUnauthorized() {
	asset := s.registerAsset()

	_, err := s.licenses.OfferLicense(s.buyer, &OfferLicenseRequest{
		AssetID: asset.AssetID,
		Price:   100,
	})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthorized))

	value, err := currentSequence(s.db, models.SequenceLicenseID)
	s.Require().NoError(err)
	s.Equal(uint64(0), value)
}

func (s *LicenseServiceTestSuite) TestOfferLicenseUnknownAssetUnauthorized() {
	_, err := s.licenses.OfferLicense(s.owner, &OfferLicenseRequest{
		AssetID: 42,
		Price:   100,
	})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthorized))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseCreditsFullAttachedAmount() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)
	fundDeposit(s.T(), s.db, s.buyer.Address, 200)

	accepted, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 150)
	s.Require().NoError(err)

	s.True(accepted.Accepted)
	s.True(accepted.Buyer.Equal(s.buyer))
	s.Equal(int64(150), accepted.PaidAmount)
	s.NotNil(accepted.AcceptedAt)

	// Overpayment above the asking price stays with the payee.
	s.Equal(int64(150), s.escrowBalance(s.owner.Address))
	s.Equal(int64(50), s.depositBalance(s.buyer.Address))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseExactPrice() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)
	fundDeposit(s.T(), s.db, s.buyer.Address, 100)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 100)
	s.Require().NoError(err)

	s.Equal(int64(100), s.escrowBalance(s.owner.Address))
	s.Equal(int64(0), s.depositBalance(s.buyer.Address))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseTwiceFails() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)
	fundDeposit(s.T(), s.db, s.buyer.Address, 100)
	other := models.CrossAccount{Address: "0x4444444444444444444444444444444444444444"}
	fundDeposit(s.T(), s.db, other.Address, 300)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 100)
	s.Require().NoError(err)

	_, err = s.licenses.AcceptLicense(other, offer.LicenseID, 300)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrAlreadyAccepted))

	// The losing buyer keeps their deposit and the escrow holds only the
	// first payment.
	s.Equal(int64(300), s.depositBalance(other.Address))
	s.Equal(int64(100), s.escrowBalance(s.owner.Address))

	var stored models.LicenseOffer
	s.Require().NoError(s.db.Where("license_id = ?", offer.LicenseID).First(&stored).Error)
	s.True(stored.Buyer.Equal(s.buyer))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseUnderpaymentRejected() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)
	fundDeposit(s.T(), s.db, s.buyer.Address, 500)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 99)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInsufficientPayment))

	var stored models.LicenseOffer
	s.Require().NoError(s.db.Where("license_id = ?", offer.LicenseID).First(&stored).Error)
	s.False(stored.Accepted)
	s.Equal(int64(500), s.depositBalance(s.buyer.Address))
	s.Equal(int64(0), s.escrowBalance(s.owner.Address))
}

func (s *LicenseServiceTestSuite) TestAcceptFreeOfferWithZeroAmount() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 0)

	// Zero covers a zero price even for a buyer who never funded a deposit.
	accepted, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 0)
	s.Require().NoError(err)
	s.True(accepted.Accepted)
	s.True(accepted.Buyer.Equal(s.buyer))
	s.Equal(int64(0), accepted.PaidAmount)
	s.Equal(int64(0), s.escrowBalance(s.owner.Address))
	s.Equal(int64(0), s.depositBalance(s.buyer.Address))

	// The terminal state is still terminal.
	_, err = s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 0)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrAlreadyAccepted))
}

func (s *LicenseServiceTestSuite) TestAcceptFreeOfferWithOverpayment() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 0)
	fundDeposit(s.T(), s.db, s.buyer.Address, 10)

	accepted, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), accepted.PaidAmount)
	s.Equal(int64(1), s.escrowBalance(s.owner.Address))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseNegativeAmountRejected() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 0)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, -5)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInsufficientPayment))

	var stored models.LicenseOffer
	s.Require().NoError(s.db.Where("license_id = ?", offer.LicenseID).First(&stored).Error)
	s.False(stored.Accepted)
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseInsufficientDeposit() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)
	fundDeposit(s.T(), s.db, s.buyer.Address, 50)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 100)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInsufficientDeposit))

	var stored models.LicenseOffer
	s.Require().NoError(s.db.Where("license_id = ?", offer.LicenseID).First(&stored).Error)
	s.False(stored.Accepted)
	s.Equal(int64(50), s.depositBalance(s.buyer.Address))
}

func (s *LicenseServiceTestSuite) TestAcceptLicenseUnfundedBuyer() {
	asset := s.registerAsset()
	offer := s.offer(asset.AssetID, 100)

	_, err := s.licenses.AcceptLicense(s.buyer, offer.LicenseID, 100)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInsufficientDeposit))
}

func (s *LicenseServiceTestSuite) TestAcceptUnknownOffer() {
	_, err := s.licenses.AcceptLicense(s.buyer, 42, 100)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrOfferNotFound))
}

func (s *LicenseServiceTestSuite) TestListAssetOffers() {
	asset := s.registerAsset()
	s.offer(asset.AssetID, 100)
	s.offer(asset.AssetID, 250)

	offers, total, err := s.licenses.ListAssetOffers(asset.AssetID, defaultPage())
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(offers, 2)

	offers, total, err = s.licenses.ListAssetOffers(999, defaultPage())
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(offers)
}

func TestLicenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LicenseServiceTestSuite))
}
