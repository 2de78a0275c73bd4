package user

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone string
	// Currency is the ISO 4217 code invoices of this user are issued in.
	Currency string
}
