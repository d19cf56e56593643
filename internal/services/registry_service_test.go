// internal/services/registry_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
)

type RegistryServiceTestSuite struct {
	suite.Suite

	db       *gorm.DB
	chain    *fakeChain
	registry *RegistryService

	owner    models.CrossAccount
	stranger models.CrossAccount
}

func (s *RegistryServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.chain = newFakeChain()
	events := NewEventService(s.db)
	s.registry = NewRegistryService(s.db, s.chain, events, newTestConfig())

	s.owner = models.CrossAccount{Address: "0x1111111111111111111111111111111111111111"}
	s.stranger = models.CrossAccount{Address: "0x2222222222222222222222222222222222222222"}
}

func (s *RegistryServiceTestSuite) createCollection(owner models.CrossAccount) *models.CollectionRecord {
	record, err := s.registry.CreateCollection(owner, &CreateCollectionRequest{
		Name:   "Patent Vault",
		Symbol: "PVT",
	})
	s.Require().NoError(err)
	return record
}

func (s *RegistryServiceTestSuite) registerRequest(collection string) *RegisterAssetRequest {
	return &RegisterAssetRequest{
		IPType:            models.IPTypePatent,
		Jurisdiction:      "US",
		CollectionAddress: collection,
		Name:              "Compression method",
	}
}

func (s *RegistryServiceTestSuite) TestCreateCollectionRecordsOwner() {
	record := s.createCollection(s.owner)

	s.NotEmpty(record.Address)
	s.True(record.Owner.Equal(s.owner))
	s.True(record.SponsorConfirmed)

	isOwner, err := s.registry.IsCollectionOwner(record.Address, s.owner)
	s.Require().NoError(err)
	s.True(isOwner)

	isOwner, err = s.registry.IsCollectionOwner(record.Address, s.stranger)
	s.Require().NoError(err)
	s.False(isOwner)
}

func (s *RegistryServiceTestSuite) TestIsCollectionOwnerAbsentCollection() {
	isOwner, err := s.registry.IsCollectionOwner("0x00000000000000000000000000000000000000ff", s.owner)
	s.Require().NoError(err)
	s.False(isOwner)
}

func (s *RegistryServiceTestSuite) TestIsCollectionOwnerSecondaryIDMismatch() {
	withSecondary := models.CrossAccount{Address: s.owner.Address, SecondaryID: "5Fabc"}
	record := s.createCollection(withSecondary)

	isOwner, err := s.registry.IsCollectionOwner(record.Address, s.owner)
	s.Require().NoError(err)
	s.False(isOwner)

	isOwner, err = s.registry.IsCollectionOwner(record.Address, withSecondary)
	s.Require().NoError(err)
	s.True(isOwner)
}

func (s *RegistryServiceTestSuite) TestRegisterAssetAssignsSequentialIDs() {
	record := s.createCollection(s.owner)

	for want := uint64(1); want <= 3; want++ {
		asset, err := s.registry.RegisterAsset(s.owner, s.registerRequest(record.Address))
		s.Require().NoError(err)
		s.Equal(want, asset.AssetID)

		var stored models.IPAsset
		s.Require().NoError(s.db.Where("asset_id = ?", want).First(&stored).Error)
		s.Equal(asset.AssetID, stored.AssetID)
	}
}

func (s *RegistryServiceTestSuite) TestRegisterAssetDefaults() {
	record := s.createCollection(s.owner)

	req := s.registerRequest(record.Address)
	req.ContentRefs = []string{"ip-content/2026/01/doc.pdf"}
	asset, err := s.registry.RegisterAsset(s.owner, req)
	s.Require().NoError(err)

	s.False(asset.Verified)
	s.True(asset.Active)
	s.NotZero(asset.RegisteredAt)
	s.Equal(uint64(1), asset.TokenID)
	s.True(asset.Owner.Equal(s.owner))

	s.Require().Len(s.chain.tokens, 1)
	s.Equal(record.Address, s.chain.tokens[0].Collection)
	s.Equal("ip-content/2026/01/doc.pdf", s.chain.tokens[0].ImageRef)
}

func (s *RegistryServiceTestSuite) TestRegisterAssetNonOwnerUnauthorized() {
	record := s.createCollection(s.owner)

	asset, err := s.registry.RegisterAsset(s.stranger, s.registerRequest(record.Address))
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthorized))
	s.Nil(asset)

	value, err := currentSequence(s.db, models.SequenceAssetID)
	s.Require().NoError(err)
	s.Equal(uint64(0), value)

	var count int64
	s.Require().NoError(s.db.Model(&models.IPAsset{}).Count(&count).Error)
	s.Zero(count)
}

func (s *RegistryServiceTestSuite) TestRegisterAssetUnknownCollectionUnauthorized() {
	_, err := s.registry.RegisterAsset(s.owner, s.registerRequest("0x00000000000000000000000000000000000000ee"))
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthorized))
}

func (s *RegistryServiceTestSuite) TestRegisterAssetMintFailureRollsBack() {
	record := s.createCollection(s.owner)
	s.chain.createTokenErr = errors.New("node unreachable")

	_, err := s.registry.RegisterAsset(s.owner, s.registerRequest(record.Address))
	s.Require().Error(err)

	value, err := currentSequence(s.db, models.SequenceAssetID)
	s.Require().NoError(err)
	s.Equal(uint64(0), value)

	var count int64
	s.Require().NoError(s.db.Model(&models.IPAsset{}).Count(&count).Error)
	s.Zero(count)

	// The next registration still starts from 1.
	s.chain.createTokenErr = nil
	asset, err := s.registry.RegisterAsset(s.owner, s.registerRequest(record.Address))
	s.Require().NoError(err)
	s.Equal(uint64(1), asset.AssetID)
}

func (s *RegistryServiceTestSuite) TestRegisterAssetRejectsUnknownIPType() {
	record := s.createCollection(s.owner)

	req := s.registerRequest(record.Address)
	req.IPType = models.IPType("franchise")
	_, err := s.registry.RegisterAsset(s.owner, req)
	s.Require().Error(err)
	s.False(errors.Is(err, ErrUnauthorized))
}

func (s *RegistryServiceTestSuite) TestSearchAssetsFilters() {
	record := s.createCollection(s.owner)

	patent := s.registerRequest(record.Address)
	_, err := s.registry.RegisterAsset(s.owner, patent)
	s.Require().NoError(err)

	mark := s.registerRequest(record.Address)
	mark.IPType = models.IPTypeTrademark
	mark.Name = "House mark"
	_, err = s.registry.RegisterAsset(s.owner, mark)
	s.Require().NoError(err)

	ipType := models.IPTypeTrademark
	assets, total, err := s.registry.SearchAssets(AssetSearchParams{PaginationParams: defaultPage(), IPType: &ipType})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(assets, 1)
	s.Equal("House mark", assets[0].Name)

	assets, total, err = s.registry.SearchAssets(AssetSearchParams{PaginationParams: defaultPage(), CollectionAddress: record.Address})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(assets, 2)
}

func TestRegistryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceTestSuite))
}
