package repository_test

import (
	"strconv"
	"testing"

	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/repository"
	"eventmarket-backend/internal/app/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateVendorSlugGeneration slug выводится из имени;
// занятое значение получает числовой суффикс
func TestCreateVendorSlugGeneration(t *testing.T) {
	repo, _ := newTestRepo(t)

	first := createTestUser(t, repo, "owner1")
	second := createTestUser(t, repo, "owner2")
	third := createTestUser(t, repo, "owner3")

	v1, err := repo.CreateVendor(t.Context(), first.ID, role.Buyer, vendorInput("Studio X", ds.CategoryPhotographer))
	require.NoError(t, err)
	assert.Equal(t, "studio-x", v1.Slug)

	v2, err := repo.CreateVendor(t.Context(), second.ID, role.Buyer, vendorInput("Studio X", ds.CategoryPhotographer))
	require.NoError(t, err)
	assert.Equal(t, "studio-x-1", v2.Slug)

	v3, err := repo.CreateVendor(t.Context(), third.ID, role.Buyer, vendorInput("Studio X", ds.CategoryPhotographer))
	require.NoError(t, err)
	assert.Equal(t, "studio-x-2", v3.Slug)
}

// TestCreateVendorSecondProfile один профиль на пользователя,
// скрытый профиль тоже считается
func TestCreateVendorSecondProfile(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("First", ds.CategoryVenue))
	require.NoError(t, err)

	_, err = repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Second", ds.CategoryVenue))
	assert.ErrorIs(t, err, repository.ErrVendorExists)

	// После логического удаления профиль остаётся за владельцем
	require.NoError(t, repo.SoftDeleteVendor(t.Context(), v.ID, owner.ID, role.Buyer))
	_, err = repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Third", ds.CategoryVenue))
	assert.ErrorIs(t, err, repository.ErrVendorExists)
}

// TestCreateVendorAtomicity ошибка на вложенной строке откатывает всё:
// дубликат пункта состава услуги нарушает уникальный индекс,
// и ни одна из строк не должна остаться в базе
func TestCreateVendorAtomicity(t *testing.T) {
	repo, db := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	in := vendorInput("Broken Vendor", ds.CategoryCaterer)
	in.Address = &repository.AddressInput{City: "Москва", Country: "Россия"}
	in.PriceRange = &repository.PriceRangeInput{MinPrice: 1000, MaxPrice: 5000}
	in.Features = []string{"парковка"}
	in.Services = []repository.ServiceInput{
		{
			Name:     "Фуршет",
			Includes: []string{"закуски", "напитки", "закуски"}, // дубликат
		},
	}

	_, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrVendorExists)

	for _, model := range []interface{}{
		&ds.Vendor{}, &ds.Address{}, &ds.PriceRange{},
		&ds.Feature{}, &ds.Service{}, &ds.ServiceInclude{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "после отката таблица %T должна быть пустой", model)
	}
}

// TestCreateVendorInvalidPriceRange min > max отклоняется до транзакции
func TestCreateVendorInvalidPriceRange(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	in := vendorInput("Bad Prices", ds.CategoryFlorist)
	in.PriceRange = &repository.PriceRangeInput{MinPrice: 5000, MaxPrice: 1000}

	_, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, in)
	assert.ErrorIs(t, err, repository.ErrInvalidPriceRange)
}

// TestCreateVendorAdminVerified администратор создаёт сразу проверенного
func TestCreateVendorAdminVerified(t *testing.T) {
	repo, _ := newTestRepo(t)
	admin := createTestUser(t, repo, "admin")
	buyer := createTestUser(t, repo, "buyer")

	v, err := repo.CreateVendor(t.Context(), admin.ID, role.Admin, vendorInput("Admin Vendor", ds.CategoryMusician))
	require.NoError(t, err)
	assert.True(t, v.Verified)

	v2, err := repo.CreateVendor(t.Context(), buyer.ID, role.Buyer, vendorInput("Buyer Vendor", ds.CategoryMusician))
	require.NoError(t, err)
	assert.False(t, v2.Verified)
}

// TestCreateVendorNestedRows вложенные сущности создаются и читаются
// обратно с сохранением порядка пунктов состава
func TestCreateVendorNestedRows(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	in := vendorInput("Full Vendor", ds.CategoryPhotographer)
	in.Address = &repository.AddressInput{Street: "Арбат 1", City: "Москва", Region: "Московская область", Country: "Россия"}
	in.PriceRange = &repository.PriceRangeInput{MinPrice: 10000, MaxPrice: 50000, Currency: "RUB", Unit: "per_event"}
	in.Features = []string{"выезд", "ретушь"}
	in.Specialties = []string{"свадьбы"}
	in.Services = []repository.ServiceInput{
		{
			Name:     "Полный день",
			Price:    floatPtr(45000),
			Includes: []string{"10 часов съёмки", "обработка", "онлайн-галерея"},
		},
	}

	created, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, in)
	require.NoError(t, err)

	got, err := repo.GetVendorByLookup(t.Context(), created.Slug)
	require.NoError(t, err)

	require.NotNil(t, got.Address)
	assert.Equal(t, "Москва", got.Address.City)
	require.NotNil(t, got.PriceRange)
	assert.Equal(t, 10000.0, got.PriceRange.MinPrice)
	assert.Len(t, got.Features, 2)
	assert.Len(t, got.Specialties, 1)

	require.Len(t, got.Services, 1)
	require.Len(t, got.Services[0].Includes, 3)
	assert.Equal(t, "10 часов съёмки", got.Services[0].Includes[0].Label)
	assert.Equal(t, "обработка", got.Services[0].Includes[1].Label)
	assert.Equal(t, "онлайн-галерея", got.Services[0].Includes[2].Label)
}

// TestGetVendorByLookup id и slug взаимозаменяемы
func TestGetVendorByLookup(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	created, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Lookup Vendor", ds.CategoryVenue))
	require.NoError(t, err)

	byID, err := repo.GetVendorByLookup(t.Context(), strconv.FormatUint(uint64(created.ID), 10))
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	bySlug, err := repo.GetVendorByLookup(t.Context(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = repo.GetVendorByLookup(t.Context(), "no-such-vendor")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestListVendorsPagination страницы стабильны и не пересекаются
func TestListVendorsPagination(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedVendors(t, repo, 25, ds.CategoryCaterer)

	seen := map[uint]bool{}
	sizes := []int{10, 10, 5}
	for page := 1; page <= 3; page++ {
		vendors, total, err := repo.ListVendors(t.Context(), repository.VendorFilter{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(25), total)
		require.Len(t, vendors, sizes[page-1], "страница %d", page)

		for _, v := range vendors {
			assert.False(t, seen[v.ID], "поставщик %d встретился дважды", v.ID)
			seen[v.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

// TestListVendorsNormalization некорректные page/limit заменяются
// значениями по умолчанию
func TestListVendorsNormalization(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedVendors(t, repo, 3, ds.CategoryOther)

	vendors, total, err := repo.ListVendors(t.Context(), repository.VendorFilter{Page: -5, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, vendors, 3)
}

// TestListVendorsFilters фильтры соединяются через AND
func TestListVendorsFilters(t *testing.T) {
	repo, db := newTestRepo(t)

	owner1 := createTestUser(t, repo, "owner1")
	owner2 := createTestUser(t, repo, "owner2")
	owner3 := createTestUser(t, repo, "owner3")

	// Латиница в городах: LOWER в sqlite не трогает кириллицу,
	// а тест проверяет регистронезависимость подстроки
	in1 := vendorInput("Moscow Photo", ds.CategoryPhotographer)
	in1.Address = &repository.AddressInput{City: "Moscow"}
	in1.PriceRange = &repository.PriceRangeInput{MinPrice: 10000, MaxPrice: 50000}
	v1, err := repo.CreateVendor(t.Context(), owner1.ID, role.Buyer, in1)
	require.NoError(t, err)

	in2 := vendorInput("Kazan Photo", ds.CategoryPhotographer)
	in2.Address = &repository.AddressInput{City: "Kazan"}
	in2.PriceRange = &repository.PriceRangeInput{MinPrice: 5000, MaxPrice: 20000}
	_, err = repo.CreateVendor(t.Context(), owner2.ID, role.Buyer, in2)
	require.NoError(t, err)

	in3 := vendorInput("Moscow Venue", ds.CategoryVenue)
	in3.Address = &repository.AddressInput{City: "Moscow"}
	_, err = repo.CreateVendor(t.Context(), owner3.ID, role.Buyer, in3)
	require.NoError(t, err)

	// Категория
	vendors, total, err := repo.ListVendors(t.Context(), repository.VendorFilter{Category: ds.CategoryPhotographer})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, vendors, 2)

	// Категория + город (подстрока без учёта регистра)
	vendors, total, err = repo.ListVendors(t.Context(), repository.VendorFilter{
		Category: ds.CategoryPhotographer,
		City:     "MOSC",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, vendors, 1)
	assert.Equal(t, v1.ID, vendors[0].ID)

	// Ценовая граница
	vendors, _, err = repo.ListVendors(t.Context(), repository.VendorFilter{
		Category: ds.CategoryPhotographer,
		MinPrice: floatPtr(8000),
	})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, v1.ID, vendors[0].ID)

	// Флаг verified
	require.NoError(t, db.Model(&ds.Vendor{}).Where("id = ?", v1.ID).Update("verified", true).Error)
	vendors, _, err = repo.ListVendors(t.Context(), repository.VendorFilter{Verified: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, v1.ID, vendors[0].ID)

	// Поиск по имени
	vendors, _, err = repo.ListVendors(t.Context(), repository.VendorFilter{Search: "kazan"})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Kazan Photo", vendors[0].Name)
}

// TestListVendorsSortByName сортировка по имени в обе стороны
func TestListVendorsSortByName(t *testing.T) {
	repo, _ := newTestRepo(t)

	for i, name := range []string{"Charlie", "Alpha", "Bravo"} {
		owner := createTestUser(t, repo, "owner"+strconv.Itoa(i))
		_, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput(name, ds.CategoryDecorator))
		require.NoError(t, err)
	}

	vendors, _, err := repo.ListVendors(t.Context(), repository.VendorFilter{SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, vendors, 3)
	assert.Equal(t, "Alpha", vendors[0].Name)
	assert.Equal(t, "Charlie", vendors[2].Name)

	vendors, _, err = repo.ListVendors(t.Context(), repository.VendorFilter{SortBy: "name", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Charlie", vendors[0].Name)
}

// TestSoftDeleteVendor скрытый поставщик пропадает из каталога
// и карточки, но строка остаётся в базе
func TestSoftDeleteVendor(t *testing.T) {
	repo, db := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Hidden Vendor", ds.CategoryTransport))
	require.NoError(t, err)

	require.NoError(t, repo.SoftDeleteVendor(t.Context(), v.ID, owner.ID, role.Buyer))

	_, total, err := repo.ListVendors(t.Context(), repository.VendorFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = repo.GetVendorByLookup(t.Context(), v.Slug)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&ds.Vendor{}).Where("id = ?", v.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestUpdateVendorAuthz менять поставщика может владелец или администратор
func TestUpdateVendorAuthz(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")
	stranger := createTestUser(t, repo, "stranger")
	admin := createTestUser(t, repo, "admin")

	v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Protected", ds.CategoryVenue))
	require.NoError(t, err)

	newName := "Renamed"
	_, err = repo.UpdateVendor(t.Context(), v.ID, stranger.ID, role.Buyer, repository.UpdateVendorInput{Name: &newName})
	assert.ErrorIs(t, err, repository.ErrAccessDenied)

	updated, err := repo.UpdateVendor(t.Context(), v.ID, owner.ID, role.Buyer, repository.UpdateVendorInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	// Slug не меняется вслед за именем
	assert.Equal(t, v.Slug, updated.Slug)

	adminName := "Admin Renamed"
	updated, err = repo.UpdateVendor(t.Context(), v.ID, admin.ID, role.Admin, repository.UpdateVendorInput{Name: &adminName})
	require.NoError(t, err)
	assert.Equal(t, "Admin Renamed", updated.Name)

	err = repo.SoftDeleteVendor(t.Context(), v.ID, stranger.ID, role.Buyer)
	assert.ErrorIs(t, err, repository.ErrAccessDenied)
}

// TestUpdateVendorUpsertsPriceRange обновление создаёт ценовой
// диапазон, если его не было
func TestUpdateVendorUpsertsPriceRange(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")

	v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("No Prices", ds.CategoryFlorist))
	require.NoError(t, err)
	require.Nil(t, v.PriceRange)

	updated, err := repo.UpdateVendor(t.Context(), v.ID, owner.ID, role.Buyer, repository.UpdateVendorInput{
		PriceRange: &repository.PriceRangeInput{MinPrice: 2000, MaxPrice: 8000, Currency: "RUB", Unit: "per_event"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PriceRange)
	assert.Equal(t, 2000.0, updated.PriceRange.MinPrice)

	// Некорректный диапазон отклоняется и при обновлении
	_, err = repo.UpdateVendor(t.Context(), v.ID, owner.ID, role.Buyer, repository.UpdateVendorInput{
		PriceRange: &repository.PriceRangeInput{MinPrice: 9000, MaxPrice: 100},
	})
	assert.ErrorIs(t, err, repository.ErrInvalidPriceRange)
}

// TestAddVendorImage позиции растут от нуля в порядке добавления
func TestAddVendorImage(t *testing.T) {
	repo, _ := newTestRepo(t)
	owner := createTestUser(t, repo, "owner1")
	stranger := createTestUser(t, repo, "stranger")

	v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput("Gallery", ds.CategoryPhotographer))
	require.NoError(t, err)

	require.NoError(t, repo.AddVendorImage(t.Context(), v.ID, owner.ID, role.Buyer, "a.jpg"))
	require.NoError(t, repo.AddVendorImage(t.Context(), v.ID, owner.ID, role.Buyer, "b.jpg"))

	err = repo.AddVendorImage(t.Context(), v.ID, stranger.ID, role.Buyer, "c.jpg")
	assert.ErrorIs(t, err, repository.ErrAccessDenied)

	got, err := repo.GetVendorByLookup(t.Context(), v.Slug)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "a.jpg", got.Images[0].URL)
	assert.Equal(t, 0, got.Images[0].Position)
	assert.Equal(t, "b.jpg", got.Images[1].URL)
	assert.Equal(t, 1, got.Images[1].Position)
}
