package images

// DefaultCharacterIndexURL lists character images keyed by the same ids
// the upstream API uses.
const DefaultCharacterIndexURL = "https://akabab.github.io/starwars-api/api/all.json"

// characterNames maps character ids missing from the index by id to the
// name they are listed under.
var characterNames = map[int]string{
	18: "Wedge Antilles",
	26: "Lobot",
	28: "Mon Mothma",
	36: "Roos Tarpals",
	37: "Rugor Nass",
	43: "Shmi Skywalker",
	48: "Ratts Tyerell",
	49: "Gasgano",
	50: "Ben Quadinaros",
	51: "Mace Windu",
	55: "Adi Gallia",
	56: "Saesee Tiin",
	57: "Yarael Poof",
	64: "Luminara Unduli",
	66: "Cordé",
	71: "Dexter Jettster",
	74: "Dormé",
	77: "San Hill",
	79: "Grievous",
	82: "Sly Moore",
	83: "Tion Medon",
}

var filmPosters = map[int]string{
	1: "https://image.tmdb.org/t/p/w500/6FfCtAuVAW8XJjZ7eWeLibRLWTw.jpg",
	2: "https://image.tmdb.org/t/p/w500/nNAeTmF4CtdSgMDplXTDPOpYzsX.jpg",
	3: "https://image.tmdb.org/t/p/w500/mDCBQNhR6R0PVFucJAkeWrHNfa.jpg",
	4: "https://image.tmdb.org/t/p/w500/6wkfovpn7Eq8dYNKaG5PY3q2oq6.jpg",
	5: "https://image.tmdb.org/t/p/w500/oZNPzxqM2s5DyVWab09NTQScDQt.jpg",
	6: "https://image.tmdb.org/t/p/w500/xfSAoBEm9MNBjmlNcDYLvLSMlnq.jpg",
}

const wikia = "https://static.wikia.nocookie.net/starwars/images/"

var starshipImages = map[int]string{
	2:  wikia + "3/3a/CR90_corvette.png",
	3:  wikia + "e/e0/ImperialI-class_SD.png",
	5:  wikia + "0/00/Sentinel_LC.png",
	9:  wikia + "b/be/Death_Star_I.png",
	10: wikia + "4/48/Millenniumfalcon2.jpg",
	11: wikia + "7/72/Ywing.jpg",
	12: wikia + "4/48/X-wing_Schematics.gif",
	13: wikia + "4/41/TIE_Advanced_x1_starfighter.png",
	15: wikia + "7/7b/Executor_BF2.png",
	17: wikia + "e/e8/RebelTransportShip-DB.png",
	21: wikia + "f/f8/Slave_I_DICE.png",
	22: wikia + "5/5e/Lambda-class_T-4a_shuttle.png",
	23: wikia + "3/31/Efoil-TCG.jpg",
	27: wikia + "d/d4/Calamari_cruiser.png",
	28: wikia + "1/1c/A-wing-SWCT.png",
	29: wikia + "6/6e/B-wing-SWCT.png",
	31: wikia + "a/a2/Republic_Cruiser.png",
	32: wikia + "5/5a/Droidfightership.jpg",
	39: wikia + "1/1d/Naboo_Royal_Starship.png",
	40: wikia + "7/7e/N-1_Starfighter.png",
	41: wikia + "3/32/Jedi_Starfighter.png",
	43: wikia + "c/c3/H-type_Nubian_yacht.png",
	48: wikia + "e/e9/Jedi_Interceptor.png",
	49: wikia + "4/47/Invisible_Hand.png",
	52: wikia + "1/17/ATTEside.jpg",
	58: wikia + "a/a8/Trade_Federation_cruiser.png",
	59: wikia + "0/03/Theta-class_shuttle.png",
	61: wikia + "4/47/RepublicAttackCruiser-TCW.png",
	63: wikia + "7/74/RepublicAssaultShip-class.png",
	64: wikia + "c/c6/Arc170-TFOWM.jpg",
	65: wikia + "5/5d/BankingClanFrigate-DB.png",
	66: wikia + "2/21/Bellicose_Separatist_cruiser.png",
	68: wikia + "c/c3/Jedistarfighter_negvv.jpg",
	74: wikia + "4/47/TriFighter.png",
	75: wikia + "5/53/SoullessOne-FF.png",
}
