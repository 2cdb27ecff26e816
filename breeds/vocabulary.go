package breeds

// Canonical is the breed list served by /breeds and used by models that ship
// without their own vocabulary.
var Canonical = []string{
	"Affenpinscher", "Afghan Hound", "Airedale Terrier", "Akita", "Alaskan Malamute",
	"American Bulldog", "American Pit Bull Terrier", "American Staffordshire Terrier",
	"Australian Cattle Dog", "Australian Shepherd", "Basenji", "Basset Hound", "Beagle",
	"Belgian Malinois", "Bernese Mountain Dog", "Bichon Frise", "Bloodhound", "Border Collie",
	"Border Terrier", "Boston Terrier", "Boxer", "Brittany", "Bull Terrier", "Bulldog",
	"Bullmastiff", "Cairn Terrier", "Cavalier King Charles Spaniel", "Chihuahua",
	"Chinese Crested", "Chow Chow", "Cocker Spaniel", "Collie", "Coonhound", "Corgi",
	"Dachshund", "Dalmatian", "Doberman Pinscher", "English Setter", "English Springer Spaniel",
	"Fox Terrier", "French Bulldog", "German Shepherd", "German Shorthaired Pointer",
	"Golden Retriever", "Great Dane", "Great Pyrenees", "Greyhound", "Havanese",
	"Irish Setter", "Irish Wolfhound", "Jack Russell Terrier", "Japanese Chin",
	"Labrador Retriever", "Maltese", "Mastiff", "Miniature Schnauzer", "Newfoundland",
	"Norwegian Elkhound", "Old English Sheepdog", "Papillon", "Pekingese", "Pointer",
	"Pomeranian", "Poodle", "Portuguese Water Dog", "Pug", "Rhodesian Ridgeback",
	"Rottweiler", "Saint Bernard", "Saluki", "Samoyed", "Scottish Terrier", "Shar Pei",
	"Shiba Inu", "Shih Tzu", "Siberian Husky", "Staffordshire Bull Terrier", "Vizsla",
	"Weimaraner", "Welsh Corgi", "West Highland White Terrier", "Whippet", "Yorkshire Terrier",
	"Australian Kelpie", "Belgian Tervuren", "Bernedoodle", "Catahoula Leopard Dog",
	"English Bulldog", "German Pinscher", "Giant Schnauzer", "Gordon Setter", "Italian Greyhound",
	"Keeshond", "Leonberger", "Lhasa Apso", "Norwegian Lundehund", "Nova Scotia Duck Tolling Retriever",
	"Otterhound", "Pharaoh Hound", "Plott Hound", "Redbone Coonhound", "Russell Terrier",
	"Smooth Fox Terrier", "Soft Coated Wheaten Terrier", "Spanish Water Dog", "Standard Schnauzer",
	"Sussex Spaniel", "Tibetan Mastiff", "Tibetan Spaniel", "Tibetan Terrier", "Toy Fox Terrier",
	"Treeing Walker Coonhound", "Welsh Springer Spaniel", "Welsh Terrier", "Wire Fox Terrier",
	"Xoloitzcuintli", "American Eskimo Dog", "Anatolian Shepherd Dog", "Black Russian Terrier",
	"Bluetick Coonhound", "Boerboel", "Bouvier des Flandres", "Boykin Spaniel", "Bracco Italiano",
	"Briard", "Brussels Griffon", "Canaan Dog", "Cane Corso", "Cardigan Welsh Corgi",
	"Chinese Shar Pei", "Clumber Spaniel", "Curly Coated Retriever", "English Cocker Spaniel",
	"Field Spaniel", "Finnish Lapphund", "Flat Coated Retriever", "German Wirehaired Pointer",
	"Glen of Imaal Terrier", "Greater Swiss Mountain Dog", "Ibizan Hound", "Icelandic Sheepdog",
}

// StanfordDogs is the 120-class label order of models trained on the
// Stanford Dogs dataset.
var StanfordDogs = []string{
	"Chihuahua", "Japanese_spaniel", "Maltese_dog", "Pekinese", "Shih-Tzu",
	"Blenheim_spaniel", "Papillon", "Toy_terrier", "Rhodesian_ridgeback", "Afghan_hound",
	"Basset", "Beagle", "Bloodhound", "Bluetick", "Black-and-tan_coonhound",
	"Walker_hound", "English_foxhound", "Redbone", "Borzoi", "Irish_wolfhound",
	"Italian_greyhound", "Whippet", "Ibizan_hound", "Norwegian_elkhound", "Otterhound",
	"Saluki", "Scottish_deerhound", "Weimaraner", "Staffordshire_bullterrier", "American_Staffordshire_terrier",
	"Bedlington_terrier", "Border_terrier", "Kerry_blue_terrier", "Irish_terrier", "Norfolk_terrier",
	"Norwich_terrier", "Yorkshire_terrier", "Wire-haired_fox_terrier", "Lakeland_terrier", "Sealyham_terrier",
	"Airedale", "Cairn", "Australian_terrier", "Dandie_Dinmont", "Boston_bull",
	"Miniature_schnauzer", "Giant_schnauzer", "Standard_schnauzer", "Scotch_terrier", "Tibetan_terrier",
	"Silky_terrier", "Soft-coated_wheaten_terrier", "West_Highland_white_terrier", "Lhasa", "Flat-coated_retriever",
	"Curly-coated_retriever", "Golden_retriever", "Labrador_retriever", "Chesapeake_Bay_retriever", "German_short-haired_pointer",
	"Vizsla", "English_setter", "Irish_setter", "Gordon_setter", "Brittany_spaniel",
	"Clumber", "English_springer", "Welsh_springer_spaniel", "Cocker_spaniel", "Sussex_spaniel",
	"Irish_water_spaniel", "Kuvasz", "Schipperke", "Groenendael", "Malinois",
	"Briard", "Kelpie", "Komondor", "Old_English_sheepdog", "Shetland_sheepdog",
	"Collie", "Border_collie", "Bouvier_des_Flandres", "Rottweiler", "German_shepherd",
	"Doberman", "Miniature_pinscher", "Greater_Swiss_Mountain_dog", "Bernese_mountain_dog", "Appenzeller",
	"EntleBucher", "Boxer", "Bull_mastiff", "Tibetan_mastiff", "French_bulldog",
	"Great_Dane", "Saint_Bernard", "Eskimo_dog", "Malamute", "Siberian_husky",
	"Affenpinscher", "Basenji", "Pug", "Leonberg", "Newfoundland",
	"Great_Pyrenees", "Samoyed", "Pomeranian", "Chow", "Keeshond",
	"Brabancon_griffon", "Pembroke", "Cardigan", "Toy_poodle", "Miniature_poodle",
	"Standard_poodle", "Mexican_hairless", "Dingo", "Dhole", "African_hunting_dog",
}
