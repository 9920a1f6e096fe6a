package cli

var PrintContacts = printContacts
