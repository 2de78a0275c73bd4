package client

type Client struct {
	Id        int
	Name      string
	Email     string
	Address   string
	VatNumber string
}

// Project groups activities of a single client.
type Project struct {
	Id       int
	ClientId int
	Name     string
}
