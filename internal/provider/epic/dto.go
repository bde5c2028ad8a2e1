package epic

// manifest is one launcher install record (*.item)
type manifest struct {
	DisplayName              string `json:"DisplayName"`
	AppName                  string `json:"AppName"`
	InstallLocation          string `json:"InstallLocation"`
	CatalogNamespace         string `json:"CatalogNamespace"`
	CatalogItemID            string `json:"CatalogItemId"`
	MainGameAppName          string `json:"MainGameAppName"`
	MainGameCatalogNamespace string `json:"MainGameCatalogNamespace"`
	AppVersionString         string `json:"AppVersionString"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Catalog struct {
			CatalogOffers struct {
				Elements []offer `json:"elements"`
			} `json:"catalogOffers"`
		} `json:"Catalog"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type offer struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ProductSlug string     `json:"productSlug"`
	KeyImages   []keyImage `json:"keyImages"`
	Items       []struct {
		ID string `json:"id"`
	} `json:"items"`
	Categories []category `json:"categories"`
	Seller struct {
		Name string `json:"name"`
	} `json:"seller"`
}

type keyImage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type category struct {
	Path string `json:"path"`
}
