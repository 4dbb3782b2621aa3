package memory

import (
	"time"

	"github.com/mmcdole/vizinho/internal/domain"
)

var fixtureStates = []domain.LocationOption{
	{ID: "sp", Name: "São Paulo"},
	{ID: "rj", Name: "Rio de Janeiro"},
	{ID: "mg", Name: "Minas Gerais"},
	{ID: "pr", Name: "Paraná"},
}

var fixtureCities = []domain.LocationOption{
	{ID: "sp-sao-paulo", Name: "São Paulo", ParentID: "sp"},
	{ID: "sp-campinas", Name: "Campinas", ParentID: "sp"},
	{ID: "sp-santos", Name: "Santos", ParentID: "sp"},
	{ID: "rj-rio", Name: "Rio de Janeiro", ParentID: "rj"},
	{ID: "rj-niteroi", Name: "Niterói", ParentID: "rj"},
	{ID: "mg-bh", Name: "Belo Horizonte", ParentID: "mg"},
	{ID: "pr-curitiba", Name: "Curitiba", ParentID: "pr"},
}

var fixtureCondominiums = []domain.LocationOption{
	{ID: "cond-jardins", Name: "Residencial Jardins", ParentID: "sp-sao-paulo"},
	{ID: "cond-morumbi", Name: "Condomínio Parque Morumbi", ParentID: "sp-sao-paulo"},
	{ID: "cond-taquaral", Name: "Residencial Taquaral", ParentID: "sp-campinas"},
	{ID: "cond-barra", Name: "Condomínio Barra Bonita", ParentID: "rj-rio"},
	{ID: "cond-icarai", Name: "Edifício Icaraí", ParentID: "rj-niteroi"},
	{ID: "cond-pampulha", Name: "Residencial Pampulha", ParentID: "mg-bh"},
}

func fixtureListings() []domain.Listing {
	day := func(n int) time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	return []domain.Listing{
		{ID: "l-01", Title: "Bolo de cenoura com chocolate", Description: "Feito sob encomenda, 1 kg", Price: 45, Category: "Alimentos", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-jardins", SellerID: "u2", CreatedAt: day(0)},
		{ID: "l-02", Title: "Marmitas fit semanais", Description: "Kit com 10 refeições", Price: 180, Category: "Alimentos", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-morumbi", SellerID: "u3", CreatedAt: day(1)},
		{ID: "l-03", Title: "Aulas de violão", Description: "Iniciantes, no salão de festas", Price: 90, Category: "Serviços", Type: "Serviço", Status: domain.StatusActive, CondominiumID: "cond-jardins", SellerID: "u4", CreatedAt: day(2)},
		{ID: "l-04", Title: "Passeio com cães", Description: "Manhãs e fins de tarde", Price: 35, Category: "Serviços", Type: "Serviço", Status: domain.StatusActive, CondominiumID: "cond-taquaral", SellerID: "u5", CreatedAt: day(3)},
		{ID: "l-05", Title: "Notebook usado 14\"", Description: "8 GB RAM, bateria nova", Price: 1850, Category: "Eletrônicos", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-barra", SellerID: "u6", CreatedAt: day(4)},
		{ID: "l-06", Title: "Fone bluetooth", Description: "Pouco uso", Price: 120, Category: "Eletrônicos", Type: "Produto", Status: domain.StatusReserved, CondominiumID: "cond-jardins", SellerID: "u2", CreatedAt: day(5)},
		{ID: "l-07", Title: "Sofá de 3 lugares", Description: "Retirar no local", Price: 950, Category: "Móveis", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-pampulha", SellerID: "u7", CreatedAt: day(6)},
		{ID: "l-08", Title: "Mesa de jantar", Description: "Madeira maciça, 6 lugares", Price: 1200, Category: "Móveis", Type: "Produto", Status: domain.StatusSold, CondominiumID: "cond-morumbi", SellerID: "u3", CreatedAt: day(7)},
		{ID: "l-09", Title: "Jaqueta jeans infantil", Description: "Tamanho 8", Price: 60, Category: "Vestuário", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-icarai", SellerID: "u8", CreatedAt: day(8)},
		{ID: "l-10", Title: "Bicicleta aro 26", Description: "Revisada", Price: 700, Category: "Outros", Type: "Produto", Status: domain.StatusActive, CondominiumID: "cond-taquaral", SellerID: "u5", CreatedAt: day(9)},
		{ID: "l-11", Title: "Conserto de eletrodomésticos", Description: "Orçamento sem compromisso", Price: 0, Category: "Serviços", Type: "Serviço", Status: domain.StatusActive, CondominiumID: "cond-barra", SellerID: "u6", CreatedAt: day(10)},
	}
}
