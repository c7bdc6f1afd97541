package service

import (
	"context"
	"errors"
	"strings"

	"farmconnect/internal/cache"
	"farmconnect/internal/models"
	"farmconnect/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxFarmSize    = 10000
	maxNameLen     = 100
	maxBioLen      = 1000
	maxProfileTags = 50
)

type ProfileService struct {
	profileRepo      repository.ProfileRepository
	farmProfileRepo  repository.FarmProfileRepository
	storeProfileRepo repository.StoreProfileRepository
	cache            *cache.Store
}

// NewProfileService builds the service. profileCache may be nil to disable caching.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	farmProfileRepo repository.FarmProfileRepository,
	storeProfileRepo repository.StoreProfileRepository,
	profileCache *cache.Store,
) *ProfileService {
	return &ProfileService{
		profileRepo:      profileRepo,
		farmProfileRepo:  farmProfileRepo,
		storeProfileRepo: storeProfileRepo,
		cache:            profileCache,
	}
}

// GetMine returns the caller's profile.
func (s *ProfileService) GetMine(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p *models.UserProfile
	err := s.cache.Aside(ctx, cache.UserProfileKey(userID), &p, cache.ProfileTTL, func() (err error) {
		p, err = s.profileRepo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// Create registers the caller's profile. The email defaults to the session email.
func (s *ProfileService) Create(ctx context.Context, userID, sessionEmail string, in models.UserProfileInput) (*models.UserProfile, error) {
	if strings.TrimSpace(in.Email) == "" {
		in.Email = sessionEmail
	}
	if in.Role == "" {
		in.Role = models.RoleBuyer
	}

	var v violations
	v.require("fullName", in.FullName)
	if len(in.FullName) > maxNameLen {
		v.add("fullName", "must be at most %d characters", maxNameLen)
	}
	if !validEmail(in.Email) {
		v.add("email", "must be a valid email address")
	}
	if in.Phone != "" && !validPhone(in.Phone) {
		v.add("phone", "must be a valid phone number")
	}
	if !in.Role.Valid() {
		v.add("role", "must be one of Farmer, Seller, Buyer, Both")
	}
	if len(in.Bio) > maxBioLen {
		v.add("bio", "must be at most %d characters", maxBioLen)
	}
	if err := v.err("Invalid profile"); err != nil {
		return nil, err
	}

	p := &models.UserProfile{
		UserID:         userID,
		FullName:       strings.TrimSpace(in.FullName),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Role:           in.Role,
		Bio:            in.Bio,
		Location:       in.Location,
		ProfilePicture: in.ProfilePicture,
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewValidationError("Profile already exists")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.UserProfileKey(userID))
	return p, nil
}

// Update applies the allow-listed fields. Only the owner may update.
func (s *ProfileService) Update(ctx context.Context, id primitive.ObjectID, userID string, upd models.UserProfileUpdate) (*models.UserProfile, error) {
	var v violations
	if upd.FullName != nil {
		v.require("fullName", *upd.FullName)
		if len(*upd.FullName) > maxNameLen {
			v.add("fullName", "must be at most %d characters", maxNameLen)
		}
	}
	if upd.Phone != nil && *upd.Phone != "" && !validPhone(*upd.Phone) {
		v.add("phone", "must be a valid phone number")
	}
	if upd.Role != nil && !upd.Role.Valid() {
		v.add("role", "must be one of Farmer, Seller, Buyer, Both")
	}
	if upd.Bio != nil && len(*upd.Bio) > maxBioLen {
		v.add("bio", "must be at most %d characters", maxBioLen)
	}
	if err := v.err("Invalid profile update"); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	p, err := s.profileRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.UserProfileKey(userID))
	return p, nil
}

// Delete removes the profile together with the owner's farm and store profiles.
func (s *ProfileService) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	existing, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return models.NewForbiddenError("You can only delete your own profile")
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.farmProfileRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.storeProfileRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx,
		cache.UserProfileKey(userID),
		cache.FarmProfileKey(userID),
		cache.StoreProfileKey(userID),
	)
	return nil
}

func (s *ProfileService) GetFarm(ctx context.Context, userID string) (*models.FarmProfile, error) {
	var p *models.FarmProfile
	err := s.cache.Aside(ctx, cache.FarmProfileKey(userID), &p, cache.ProfileTTL, func() (err error) {
		p, err = s.farmProfileRepo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// checkFarm validates every present field and reports all violations together.
// On create the core fields are required.
func checkFarm(in models.FarmProfileInput, creating bool) error {
	var v violations
	if creating || in.FarmName != nil {
		name := deref(in.FarmName)
		v.require("farmName", name)
		if len(name) > maxNameLen {
			v.add("farmName", "must be at most %d characters", maxNameLen)
		}
	}
	if in.FarmSize != nil {
		if *in.FarmSize <= 0 || *in.FarmSize > maxFarmSize {
			v.add("farmSize", "must be greater than 0 and at most %d", maxFarmSize)
		}
	} else if creating {
		v.add("farmSize", "is required")
	}
	if creating || in.FarmType != nil {
		if t := deref(in.FarmType); !t.Valid() {
			v.add("farmType", "must be one of crop, livestock, mixed, aquaculture, poultry")
		}
	}
	if creating || in.ProductionScale != nil {
		if sc := deref(in.ProductionScale); !sc.Valid() {
			v.add("productionScale", "must be one of small, medium, large, commercial")
		}
	}
	if creating || in.ContactPhone != nil {
		if !validPhone(deref(in.ContactPhone)) {
			v.add("contactPhone", "must be a valid phone number")
		}
	}
	if in.ContactEmail != nil && *in.ContactEmail != "" && !validEmail(*in.ContactEmail) {
		v.add("contactEmail", "must be a valid email address")
	}
	if in.Crops != nil && len(*in.Crops) > maxProfileTags {
		v.add("crops", "must list at most %d entries", maxProfileTags)
	}
	if in.Livestock != nil && len(*in.Livestock) > maxProfileTags {
		v.add("livestock", "must list at most %d entries", maxProfileTags)
	}
	if in.Description != nil && len(*in.Description) > maxDescriptionLen {
		v.add("description", "must be at most %d characters", maxDescriptionLen)
	}
	return v.err("Invalid farm profile")
}

// SaveFarm creates the caller's farm profile or updates the existing one.
// The bool reports whether a profile was created.
func (s *ProfileService) SaveFarm(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, bool, error) {
	_, err := s.farmProfileRepo.GetByUserID(ctx, userID)
	exists := err == nil
	if err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, false, err
	}

	if err := checkFarm(in, !exists); err != nil {
		return nil, false, err
	}

	if exists {
		p, err := s.farmProfileRepo.Update(ctx, userID, in)
		if err != nil {
			return nil, false, err
		}
		s.cache.Invalidate(ctx, cache.FarmProfileKey(userID))
		return p, false, nil
	}

	owner, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	p := &models.FarmProfile{
		UserID:          userID,
		UserProfileID:   owner.ID,
		FarmName:        strings.TrimSpace(deref(in.FarmName)),
		FarmLocation:    in.FarmLocation,
		FarmSize:        deref(in.FarmSize),
		FarmType:        deref(in.FarmType),
		ProductionScale: deref(in.ProductionScale),
		Crops:           deref(in.Crops),
		Livestock:       deref(in.Livestock),
		ContactPhone:    strings.TrimSpace(deref(in.ContactPhone)),
		ContactEmail:    deref(in.ContactEmail),
		Description:     deref(in.Description),
		FarmImages:      deref(in.FarmImages),
	}
	if err := s.farmProfileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, models.NewValidationError("Farm profile already exists")
		}
		return nil, false, err
	}
	s.cache.Invalidate(ctx, cache.FarmProfileKey(userID))
	return p, true, nil
}

// GetStore returns the public store profile of userID.
func (s *ProfileService) GetStore(ctx context.Context, userID string) (*models.StoreProfile, error) {
	var p *models.StoreProfile
	err := s.cache.Aside(ctx, cache.StoreProfileKey(userID), &p, cache.ProfileTTL, func() (err error) {
		p, err = s.storeProfileRepo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func checkStore(in models.StoreProfileInput, creating bool) error {
	var v violations
	if creating || in.StoreName != nil {
		name := deref(in.StoreName)
		v.require("storeName", name)
		if len(name) > maxNameLen {
			v.add("storeName", "must be at most %d characters", maxNameLen)
		}
	}
	if in.Phone != nil && *in.Phone != "" && !validPhone(*in.Phone) {
		v.add("phone", "must be a valid phone number")
	}
	if in.Email != nil && *in.Email != "" && !validEmail(*in.Email) {
		v.add("email", "must be a valid email address")
	}
	if in.Website != nil && *in.Website != "" &&
		!strings.HasPrefix(*in.Website, "http://") && !strings.HasPrefix(*in.Website, "https://") {
		v.add("website", "must start with http:// or https://")
	}
	if in.Description != nil && len(*in.Description) > maxDescriptionLen {
		v.add("description", "must be at most %d characters", maxDescriptionLen)
	}
	return v.err("Invalid store profile")
}

// SaveStore creates the caller's store profile or updates the existing one.
func (s *ProfileService) SaveStore(ctx context.Context, userID string, in models.StoreProfileInput) (*models.StoreProfile, bool, error) {
	_, err := s.storeProfileRepo.GetByUserID(ctx, userID)
	exists := err == nil
	if err != nil && !models.IsKind(err, models.KindNotFound) {
		return nil, false, err
	}

	if err := checkStore(in, !exists); err != nil {
		return nil, false, err
	}

	if exists {
		p, err := s.storeProfileRepo.Update(ctx, userID, in)
		if err != nil {
			return nil, false, err
		}
		s.cache.Invalidate(ctx, cache.StoreProfileKey(userID))
		return p, false, nil
	}

	owner, err := s.requireProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	p := &models.StoreProfile{
		UserID:        userID,
		UserProfileID: owner.ID,
		StoreName:     strings.TrimSpace(deref(in.StoreName)),
		Description:   deref(in.Description),
		Location:      in.Location,
		Phone:         deref(in.Phone),
		Email:         deref(in.Email),
		Website:       deref(in.Website),
		StoreImage:    in.StoreImage,
		BusinessHours: deref(in.BusinessHours),
	}
	if err := s.storeProfileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, models.NewValidationError("Store profile already exists")
		}
		return nil, false, err
	}
	s.cache.Invalidate(ctx, cache.StoreProfileKey(userID))
	return p, true, nil
}

// requireProfile loads the user profile that farm and store profiles extend.
func (s *ProfileService) requireProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if models.IsKind(err, models.KindNotFound) {
		return nil, models.NewValidationError("Create your user profile first", "profile: is required")
	}
	return p, err
}
