package services

import "laptopcatalog/internal/models"

// SampleLaptops returns the demo catalog loaded by the seed command.
func SampleLaptops() []models.Laptop {
	return []models.Laptop{
		{Name: "Dell Inspiron 14", Configuration: "8GB Ram, 256GB SSD", PricePerHour: models.Float(15000),
			ImageURL: "https://i.dell.com/is/image/DellContent/content/dam/ss2/product-images/dell-client-products/notebooks/inspiron-notebooks/14-5430/media-gallery/silver/in5430-cnb-05000ff090-sl.psd?qlt=90&fit=constrain,1&w=570&h=394&fmt=jpg"},
		{Name: "Lenovo ThinkPad X1 Carbon", Configuration: "16GB Ram, 512GB SSD", PricePerHour: models.Float(16000),
			ImageURL: "https://p1-ofp.static.pub/medias/lenovo-laptop-thinkpad-x1-carbon-gen-11-14-intel-hero.png"},
		{Name: "Asus VivoBook 14", Configuration: "16GB Ram, 512GB SSD", PricePerHour: models.Float(17000),
			ImageURL: "https://dlcdnwebimgs.asus.com/gain/d86a8f54-9f91-457b-b763-c51544e1396b/w800"},
		{Name: "MacBook Air M1", Configuration: "8GB Ram, 256GB SSD", PricePerHour: models.Float(18000),
			ImageURL: "https://store.storeimages.cdn-apple.com/4982/as-images.apple.com/is/macbook-air-space-gray-select-201810?wid=904&hei=840&fmt=jpeg&qlt=90"},
		{Name: "Acer Aspire", Configuration: "8GB Ram, 256GB SSD", PricePerHour: models.Float(19000),
			ImageURL: "https://images.acer.com/is/image/acer/acer-aspire-5-a515-58m-finger-print-wallpaper-steel-gray-01-1"},
		{Name: "Microsoft Surface Laptop", Configuration: "16GB Ram, 512GB SSD", PricePerHour: models.Float(20000),
			ImageURL: "https://img-prod-cms-rt-microsoft-com.akamaized.net/cms/api/am/imageFileData/RE4Vtfn?ver=5389&q=90&m=6&h=705&w=1253"},
		{Name: "Gigabyte Aero", Configuration: "16GB Ram, 512GB SSD", PricePerHour: models.Float(21000),
			ImageURL: "https://static.gigabyte.com/StaticFile/Image/Global/1126139eb8931df78d092ff51162df5e/Product/29091/png/1000"},
		{Name: "Razer Blade 16", Configuration: "32GB Ram, 1TB SSD", PricePerHour: models.Float(22000),
			ImageURL: "https://assets2.razerzone.com/images/pnx.assets/78844ab141610930764654c4f593904f/razer-blade-16-2024-laptop-500x500.png"},
		{Name: "HP Pavilion", Configuration: "8 GB Ram, 256GB SSD", PricePerHour: models.Float(23000),
			ImageURL: "https://ssl-product-images.www8-hp.com/digmedialib/prodimg/lowres/c08186058.png"},
		{Name: "GPD Duo", Configuration: "8GB Ram, 1TB SSD", PricePerHour: models.Float(24000),
			ImageURL: "https://via.placeholder.com/150/CCCCCC/808080?text=GPD+Duo"},
	}
}
