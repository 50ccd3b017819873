package domain

// Era is a named geological time period with its depth range and
// descriptive metadata. The registry is static: eras never change at
// runtime and the list doubles as the preload adjacency order.
type Era struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartMya    float64 `json:"start_mya"` // millions of years ago
	EndMya      float64 `json:"end_mya"`
	DepthMinM   float64 `json:"depth_min_m"`
	DepthMaxM   float64 `json:"depth_max_m"`
	Description string  `json:"description"`
}

// eras in chronological order, oldest first.
var eras = []Era{
	{ID: "precambrian", Name: "Precambrian", StartMya: 4600, EndMya: 541, DepthMinM: 4000, DepthMaxM: 12000, Description: "molten crust cooling into the first continents, oceans condensing from a steam atmosphere"},
	{ID: "cambrian", Name: "Cambrian", StartMya: 541, EndMya: 485, DepthMinM: 3200, DepthMaxM: 4000, Description: "shallow tropical seas erupting with the first complex animal life"},
	{ID: "ordovician", Name: "Ordovician", StartMya: 485, EndMya: 444, DepthMinM: 2800, DepthMaxM: 3200, Description: "vast warm seas ruled by nautiloids and trilobites"},
	{ID: "silurian", Name: "Silurian", StartMya: 444, EndMya: 419, DepthMinM: 2500, DepthMaxM: 2800, Description: "coral reefs spreading while the first plants green the shorelines"},
	{ID: "devonian", Name: "Devonian", StartMya: 419, EndMya: 359, DepthMinM: 2100, DepthMaxM: 2500, Description: "the age of fishes, with armored giants patrolling inland seas"},
	{ID: "carboniferous", Name: "Carboniferous", StartMya: 359, EndMya: 299, DepthMinM: 1600, DepthMaxM: 2100, Description: "steaming coal swamps under dragonflies with half-meter wingspans"},
	{ID: "permian", Name: "Permian", StartMya: 299, EndMya: 252, DepthMinM: 1200, DepthMaxM: 1600, Description: "the supercontinent Pangaea, deserts spreading before the great dying"},
	{ID: "triassic", Name: "Triassic", StartMya: 252, EndMya: 201, DepthMinM: 900, DepthMaxM: 1200, Description: "life rebounding after extinction, the first dinosaurs and mammals"},
	{ID: "jurassic", Name: "Jurassic", StartMya: 201, EndMya: 145, DepthMinM: 600, DepthMaxM: 900, Description: "fern prairies and conifer forests grazed by long-necked sauropods"},
	{ID: "cretaceous", Name: "Cretaceous", StartMya: 145, EndMya: 66, DepthMinM: 300, DepthMaxM: 600, Description: "flowering plants spreading beneath tyrannosaurs, ending in impact"},
	{ID: "paleogene", Name: "Paleogene", StartMya: 66, EndMya: 23, DepthMinM: 120, DepthMaxM: 300, Description: "mammals inheriting an emptied world, early primates in dense canopy"},
	{ID: "neogene", Name: "Neogene", StartMya: 23, EndMya: 2.6, DepthMinM: 30, DepthMaxM: 120, Description: "grasslands opening, hominins standing upright on cooling plains"},
	{ID: "quaternary", Name: "Quaternary", StartMya: 2.6, EndMya: 0, DepthMinM: 0, DepthMaxM: 30, Description: "ice ages advancing and retreating under mammoth and human footsteps"},
}

var eraIndex = func() map[string]int {
	idx := make(map[string]int, len(eras))
	for i, e := range eras {
		idx[e.ID] = i
	}
	return idx
}()

// EraByID looks up an era. The second return is false for unknown ids.
func EraByID(id string) (Era, bool) {
	i, ok := eraIndex[id]
	if !ok {
		return Era{}, false
	}
	return eras[i], true
}

// Eras returns all eras in chronological order, oldest first.
func Eras() []Era {
	out := make([]Era, len(eras))
	copy(out, eras)
	return out
}

// AdjacentEras returns the chronological neighbors of id, nearest first.
// Used by preloading; unknown ids return nil.
func AdjacentEras(id string) []Era {
	i, ok := eraIndex[id]
	if !ok {
		return nil
	}
	var out []Era
	if i+1 < len(eras) {
		out = append(out, eras[i+1])
	}
	if i-1 >= 0 {
		out = append(out, eras[i-1])
	}
	return out
}
