package manual

import "almanac/internal/domain"

func str(s string) *string {
	return &s
}

// Flagship is the hand-curated seed set of exemplary projects.
func Flagship() []domain.NormalizedProject {
	return []domain.NormalizedProject{
		{
			Name:        "Earthship Biotecture",
			Tagline:     "Radically sustainable buildings made from recycled materials",
			Description: "Earthship Biotecture designs and builds self-sufficient homes using recycled materials like tires, bottles, and cans. These off-grid structures provide their own heating/cooling through thermal mass, generate electricity from solar/wind, harvest rainwater, treat sewage on-site, and produce food in indoor greenhouses. Founded by architect Michael Reynolds in the 1970s, Earthships have been built in over 30 countries, proving that comfortable modern living can coexist with zero environmental impact.",
			Website:     str("https://earthshipglobal.com"),
			Location:    str("Taos, New Mexico, USA"),
			Coordinates: &domain.Coordinates{Lat: 36.4072, Lng: -105.5731},
			CoverImage:  str("https://images.unsplash.com/photo-1518780664697-55e3ad937233?w=800"),
			Categories:  []string{"housing", "education"},
			SDGs:        []int{4, 7, 11, 12, 13},
			Tags:        []string{"earthship", "sustainable-building", "off-grid", "recycled-materials"},
		},
		{
			Name:        "Transition Town Totnes",
			Tagline:     "The birthplace of the global Transition movement",
			Description: "Transition Town Totnes (TTT) was the first Transition initiative, founded in 2006 by Rob Hopkins. This Devon market town became a living laboratory for community-led responses to climate change and resource depletion. TTT pioneered local currency (Totnes Pound), community energy projects, local food networks, and skill-sharing programs. Their model has inspired over 1,000 Transition initiatives worldwide, proving that grassroots community action can create meaningful change.",
			Website:     str("https://www.transitiontowntotnes.org"),
			Location:    str("Totnes, Devon, UK"),
			Coordinates: &domain.Coordinates{Lat: 50.4319, Lng: -3.6849},
			Categories:  []string{"community", "food", "energy"},
			SDGs:        []int{2, 7, 11, 12, 13, 17},
			Tags:        []string{"transition-town", "community-resilience", "local-economy"},
		},
		{
			Name:        "Findhorn Ecovillage",
			Tagline:     "One of the world's largest intentional communities and a UN-recognized NGO",
			Description: "Founded in 1962 in Scotland, Findhorn has grown from a caravan park into one of the most established ecovillages in the world. Home to 400+ residents, it features ecological housing, a wind park, biological sewage treatment, local food production, and education programs that have trained thousands in sustainable living. Findhorn's ecological footprint is half the UK average, demonstrating that community-scale sustainability is achievable.",
			Website:     str("https://www.findhorn.org"),
			Location:    str("Moray, Scotland, UK"),
			Coordinates: &domain.Coordinates{Lat: 57.6571, Lng: -3.6061},
			CoverImage:  str("https://images.unsplash.com/photo-1500382017468-9049fed747ef?w=800"),
			Categories:  []string{"community", "housing", "education"},
			SDGs:        []int{4, 7, 11, 12, 13, 17},
			Tags:        []string{"ecovillage", "intentional-community", "sustainability-education"},
		},
		{
			Name:        "Open Source Ecology",
			Tagline:     "Building the Global Village Construction Set",
			Description: "Open Source Ecology (OSE) is developing the Global Village Construction Set, 50 industrial machines that can be used to build a small, sustainable civilization with modern comforts. All designs are open-source, allowing anyone to build them from locally available materials. Their tractors, brick presses, and solar concentrators cost a fraction of commercial equivalents. OSE demonstrates how open-source principles can democratize access to essential technology.",
			Website:     str("https://www.opensourceecology.org"),
			Location:    str("Missouri, USA"),
			Coordinates: &domain.Coordinates{Lat: 38.7595, Lng: -93.7360},
			Categories:  []string{"tech", "community"},
			SDGs:        []int{8, 9, 12, 17},
			Tags:        []string{"open-source", "appropriate-technology", "maker", "fabrication"},
		},
		{
			Name:        "Incredible Edible Todmorden",
			Tagline:     "Growing food on every available public space",
			Description: "What started in 2008 as a few residents planting vegetables on neglected public land in Todmorden, UK, has become a global movement. Incredible Edible transformed this former mill town by planting food everywhere: outside the police station, the health center, along the canal. The initiative has inspired 100+ groups worldwide, proving that \"propaganda gardening\" can transform communities, reduce food miles, and reconnect people with where their food comes from.",
			Website:     str("https://www.incredible-edible-todmorden.co.uk"),
			Location:    str("Todmorden, West Yorkshire, UK"),
			Coordinates: &domain.Coordinates{Lat: 53.7140, Lng: -2.0974},
			Categories:  []string{"food", "community"},
			SDGs:        []int{2, 3, 11, 12, 15},
			Tags:        []string{"urban-agriculture", "community-garden", "food-sovereignty"},
		},
		{
			Name:        "Precious Plastic",
			Tagline:     "Open-source machines and knowledge to recycle plastic locally",
			Description: "Precious Plastic provides blueprints for building plastic recycling machines from locally available materials, plus business models and community support. Started by Dave Hakkens in 2013, it has grown into a global network of 40,000+ members running local recycling workspaces. Their machines shred, extrude, inject, and compress plastic waste into new products. By decentralizing recycling, Precious Plastic proves that communities can solve the plastic crisis themselves.",
			Website:     str("https://preciousplastic.com"),
			Location:    str("Global (originated Netherlands)"),
			Categories:  []string{"tech", "community"},
			SDGs:        []int{9, 12, 14, 17},
			Tags:        []string{"recycling", "circular-economy", "open-source", "maker"},
		},
		{
			Name:        "Solar Foods",
			Tagline:     "Making protein from air, water, and electricity",
			Description: "Solar Foods has developed Solein, a protein produced from CO2, water, and renewable electricity using a fermentation process. This revolutionary technology could produce food without agriculture, dramatically reducing land use, water consumption, and emissions. A single factory the size of a few city blocks could produce as much protein as a farm the size of New York. Solar Foods represents the cutting edge of sustainable food technology.",
			Website:     str("https://solarfoods.com"),
			Location:    str("Helsinki, Finland"),
			Coordinates: &domain.Coordinates{Lat: 60.1699, Lng: 24.9384},
			Categories:  []string{"food", "tech"},
			SDGs:        []int{2, 7, 12, 13},
			Tags:        []string{"food-tech", "alternative-protein", "clean-energy"},
		},
		{
			Name:        "Repair Café International",
			Tagline:     "Free meeting places to repair things together",
			Description: "Repair Café started in Amsterdam in 2009 and has grown to 2,500+ locations in 35 countries. These community events bring together volunteer repair experts and people with broken items. Visitors bring lamps, toasters, bicycles, toys, and clothes to fix together, keeping items out of landfills and preserving repair skills. Each café prevents hundreds of kilos of waste annually while building community connections.",
			Website:     str("https://repaircafe.org"),
			Location:    str("Global (originated Amsterdam, Netherlands)"),
			Categories:  []string{"community", "tech"},
			SDGs:        []int{4, 12, 13, 17},
			Tags:        []string{"repair", "circular-economy", "right-to-repair", "skill-sharing"},
		},
		{
			Name:        "Auroville",
			Tagline:     "The city the Earth needs",
			Description: "Founded in 1968 in southern India, Auroville is an experimental township dedicated to human unity and sustainable living. Home to 3,000 residents from 60+ countries, Auroville has transformed 3,000 acres of barren land into thriving forest, developed sustainable architecture and renewable energy systems, and pioneered alternative education. UNESCO recognizes Auroville as an important ongoing experiment in international living.",
			Website:     str("https://auroville.org"),
			Location:    str("Tamil Nadu, India"),
			Coordinates: &domain.Coordinates{Lat: 12.0071, Lng: 79.8078},
			CoverImage:  str("https://images.unsplash.com/photo-1590577512604-e92ce26a3cb4?w=800"),
			Categories:  []string{"community", "housing", "education"},
			SDGs:        []int{4, 7, 11, 15, 16, 17},
			Tags:        []string{"intentional-community", "reforestation", "alternative-education"},
		},
		{
			Name:        "Low-Tech Lab",
			Tagline:     "Documenting and sharing low-tech solutions for a sustainable lifestyle",
			Description: "Low-Tech Lab is a French organization that documents and openly shares low-tech solutions: technologies that are useful, durable, accessible, and made from local materials. Their projects include solar cookers, biogas digesters, water filters, and more. Through expeditions, workshops, and an online encyclopedia, they prove that meaningful technology doesn't require high-tech; it requires appropriate tech.",
			Website:     str("https://lowtechlab.org/en"),
			Location:    str("Concarneau, France"),
			Coordinates: &domain.Coordinates{Lat: 47.8743, Lng: -3.9187},
			Categories:  []string{"tech", "education"},
			SDGs:        []int{4, 6, 7, 12, 17},
			Tags:        []string{"low-tech", "appropriate-technology", "open-source", "diy"},
		},
	}
}
