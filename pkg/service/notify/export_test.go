package notify

var OutreachText = outreachText
