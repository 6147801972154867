package catalog

import "github.com/mpoksari/catering-api/internal/enum"

// DefaultMenu returns the packaged menu used by the simple calculator.
// It doubles as the fallback table when no external catalog is configured.
func DefaultMenu() []Entry {
	return []Entry{
		{ID: "1", Name: "Nasi Kotak Ayam Bakar Madu", Category: enum.CategoryNasiKotak, UnitPrice: 35000, PricingMode: enum.PricingPerPax, MinOrder: 10, Popular: true,
			Description: "Nasi putih, ayam bakar madu, tahu tempe, lalapan, sambal terasi, kerupuk, buah."},
		{ID: "2", Name: "Tumpeng Mini (Tumini) Spesial", Category: enum.CategoryTumpeng, UnitPrice: 45000, PricingMode: enum.PricingPerPax, MinOrder: 10, Popular: true,
			Description: "Nasi kuning tumpeng mini dengan 7 macam lauk pauk premium."},
		{ID: "3", Name: "Paket Aqiqah Hemat (1 Kambing)", Category: enum.CategoryAqiqah, UnitPrice: 2350000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "40-50 Porsi. Nasi putih, gulai kambing, acar, sambal, kerupuk."},
		{ID: "301", Name: "Paket Aqiqah Standard (1 Kambing)", Category: enum.CategoryAqiqah, UnitPrice: 2850000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "60-70 Porsi. Nasi kebuli/uduk, sate & gulai, box batik premium."},
		{ID: "302", Name: "Paket Aqiqah Premium (1 Kambing)", Category: enum.CategoryAqiqah, UnitPrice: 4550000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "100-110 Porsi. Nasi Mandhi, 3 menu olahan, hardbox eksklusif."},
		{ID: "303", Name: "Kambing Guling Utuh (150 Porsi)", Category: enum.CategoryAqiqah, UnitPrice: 7500000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "Kambing guling utuh + 100 porsi nasi kebuli + prasmanan + chef di lokasi."},
		{ID: "4", Name: "Prasmanan Gold Wedding", Category: enum.CategoryPrasmanan, UnitPrice: 85000, PricingMode: enum.PricingPerPax, MinOrder: 50,
			Description: "10 menu utama + 3 pondokan + dessert + minuman."},
		{ID: "5", Name: "Snack Box Seminar Premium", Category: enum.CategorySnackBox, UnitPrice: 20000, PricingMode: enum.PricingPerPax, MinOrder: 20,
			Description: "1 roti bakso, 1 lemper ayam, 1 soes fla, air mineral."},
		{ID: "6", Name: "Nasi Kotak Rendang Padang", Category: enum.CategoryNasiKotak, UnitPrice: 40000, PricingMode: enum.PricingPerPax, MinOrder: 10, Popular: true,
			Description: "Nasi putih, rendang daging sapi, sayur nangka, sambal ijo."},
		{ID: "7", Name: "Kue Tart Custom (20cm)", Category: enum.CategoryKue, UnitPrice: 350000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "Base cake coklat/vanilla, desain sesuai tema acara."},
		{ID: "8", Name: "Tumpeng Besar (20 Pax)", Category: enum.CategoryTumpeng, UnitPrice: 950000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "Tumpeng besar hiasan mewah untuk syukuran kantor atau ulang tahun."},
		{ID: "9", Name: "Tasyakuran Mini (20 Pax)", Category: enum.CategorySyukuran, UnitPrice: 850000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "Nasi uduk/kuning, ayam, telur, tumpeng mini."},
		{ID: "10", Name: "Nasi Berkat Syukuran (Box Batik)", Category: enum.CategorySyukuran, UnitPrice: 28000, PricingMode: enum.PricingPerPax, MinOrder: 30,
			Description: "Nasi putih/kuning, ayam, mie goreng, telur, kerupuk dalam box batik."},
		{ID: "401", Name: "Intimate Wedding Package", Category: enum.CategoryWedding, UnitPrice: 85000, PricingMode: enum.PricingPerPax, MinOrder: 50,
			Description: "50-100 pax. Nasi kebuli, kambing guling mini, ayam bakar madu, 8 menu pendamping."},
		{ID: "402", Name: "Garden Wedding Package", Category: enum.CategoryWedding, UnitPrice: 115000, PricingMode: enum.PricingPerPax, MinOrder: 150,
			Description: "150-250 pax. Prasmanan 12 menu + live stall."},
		{ID: "403", Name: "Classic Wedding Package", Category: enum.CategoryWedding, UnitPrice: 135000, PricingMode: enum.PricingPerPax, MinOrder: 300,
			Description: "300-500 pax. Full buffet 15 menu + 3 gubukan + kambing guling utuh."},
		{ID: "404", Name: "Luxury Wedding Package", Category: enum.CategoryWedding, UnitPrice: 185000, PricingMode: enum.PricingPerPax, MinOrder: 500,
			Description: "500-1000 pax. 20 menu premium + live cooking + free flow dessert."},
		{ID: "405", Name: "Akad Nikah Only (Box Premium)", Category: enum.CategoryWedding, UnitPrice: 35000, PricingMode: enum.PricingPerPax, MinOrder: 50,
			Description: "50-150 pax. Nasi kotak syukuran + kue basah 3 macam + air mineral."},
		{ID: "406", Name: "One Day Wedding (300 Pax)", Category: enum.CategoryWedding, UnitPrice: 45000000, PricingMode: enum.PricingFixed, MinOrder: 1,
			Description: "Paket lengkap akad + resepsi."},
	}
}

// DefaultBuildItems returns the build-your-own ingredient table. Prices are
// per serving; quantities are servings per pax.
func DefaultBuildItems() []Entry {
	unit := func(id, name string, c enum.Category, price int64) Entry {
		return Entry{ID: id, Name: name, Category: c, UnitPrice: price, PricingMode: enum.PricingPerUnit}
	}
	perkedel := unit("p1", "Perkedel Kentang", enum.CategoryPendamping, 3000)
	perkedel.MinQuantity = 10

	return []Entry{
		unit("k1", "Nasi Putih Wangi", enum.CategoryKarbo, 5000),
		unit("k2", "Nasi Kuning Gurih", enum.CategoryKarbo, 7000),
		unit("k3", "Nasi Liwet Teri", enum.CategoryKarbo, 8000),
		unit("k4", "Nasi Merah Organik", enum.CategoryKarbo, 7000),

		unit("a1", "Ayam Goreng Lengkuas", enum.CategoryAyam, 12000),
		unit("a2", "Ayam Bakar Madu", enum.CategoryAyam, 13000),
		unit("a3", "Ayam Rica-Rica", enum.CategoryAyam, 13000),
		unit("a4", "Ayam Geprek Sambal Bawang", enum.CategoryAyam, 12000),

		unit("d1", "Rendang Daging Sapi", enum.CategoryDaging, 18000),
		unit("d2", "Empal Gepuk", enum.CategoryDaging, 17000),
		unit("d3", "Rolade Daging Saus Tiram", enum.CategoryDaging, 15000),

		unit("s1", "Udang Balado Petai", enum.CategorySeafood, 16000),
		unit("s2", "Ikan Fillet Asam Manis", enum.CategorySeafood, 14000),

		unit("v1", "Capcay Seafood", enum.CategorySayur, 8000),
		unit("v2", "Tumis Buncis Daging Cincang", enum.CategorySayur, 7000),
		unit("v3", "Sayur Asem Jakarta", enum.CategorySayur, 6000),

		perkedel,
		unit("p2", "Sambal Goreng Ati Ampela", enum.CategoryPendamping, 6000),
		unit("p3", "Tahu & Tempe Bacem", enum.CategoryPendamping, 4000),
		unit("p4", "Mie Goreng Jawa", enum.CategoryPendamping, 5000),

		unit("ds1", "Puding Coklat Vla", enum.CategoryDessert, 5000),
		unit("ds2", "Buah Potong Segar", enum.CategoryDessert, 5000),
		unit("ds3", "Es Teler", enum.CategoryDessert, 12000),

		unit("dr1", "Air Mineral", enum.CategoryMinuman, 1000),
		unit("dr2", "Teh Kotak", enum.CategoryMinuman, 4000),
		unit("dr3", "Jus Jeruk Segar", enum.CategoryMinuman, 10000),
	}
}

// Default returns an Index over the packaged menu followed by the
// build-your-own ingredients. Ids do not overlap between the two tables.
func Default() *Index {
	entries := append(DefaultMenu(), DefaultBuildItems()...)
	return MustNew(entries)
}
